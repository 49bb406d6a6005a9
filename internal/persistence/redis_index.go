package persistence

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/wftrack/pkg/api"
)

// RedisRecordIndex is a RecordIndex backed by Redis.
// It uses a simple key structure:
//
//	<prefix>inst:<id>              => HASH {status, records, updated_at}
//	<prefix>rec:<id>               => LIST of record lines in commit order
//	<prefix>idx:all                => SET of all instance IDs
//	<prefix>idx:status:<status>    => SET of instance IDs for a given status
type RedisRecordIndex struct {
	client *redis.Client
	prefix string
}

var _ RecordIndex = (*RedisRecordIndex)(nil)

// NewRedisRecordIndex creates a RedisRecordIndex.
// prefix is optional but recommended (e.g. "wftrack:").
func NewRedisRecordIndex(client *redis.Client, prefix string) *RedisRecordIndex {
	if prefix == "" {
		prefix = "wftrack:"
	}
	return &RedisRecordIndex{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisRecordIndex) keyInstance(id string) string {
	return s.prefix + "inst:" + id
}

func (s *RedisRecordIndex) keyRecords(id string) string {
	return s.prefix + "rec:" + id
}

func (s *RedisRecordIndex) keyAll() string {
	return s.prefix + "idx:all"
}

func (s *RedisRecordIndex) keyStatus(status api.InstanceStatus) string {
	return s.prefix + "idx:status:" + string(status)
}

func (s *RedisRecordIndex) IndexBatch(ctx context.Context, instanceID string, status api.InstanceStatus, records []api.Record) error {
	rows, err := encodeRows(records)
	if err != nil {
		return err
	}

	var previous string
	if status != "" {
		previous, err = s.client.HGet(ctx, s.keyInstance(instanceID), "status").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(rows) > 0 {
			lines := make([]any, 0, len(rows))
			for _, r := range rows {
				lines = append(lines, r.Line)
			}
			pipe.RPush(ctx, s.keyRecords(instanceID), lines...)
		}
		pipe.HIncrBy(ctx, s.keyInstance(instanceID), "records", int64(len(rows)))
		pipe.HSet(ctx, s.keyInstance(instanceID), "updated_at", time.Now().UnixNano())
		pipe.SAdd(ctx, s.keyAll(), instanceID)

		if status != "" {
			if previous != "" && previous != string(status) {
				pipe.SRem(ctx, s.keyStatus(api.InstanceStatus(previous)), instanceID)
			}
			pipe.HSet(ctx, s.keyInstance(instanceID), "status", string(status))
			pipe.SAdd(ctx, s.keyStatus(status), instanceID)
		}
		return nil
	})
	return err
}

func (s *RedisRecordIndex) ListRecords(ctx context.Context, instanceID string) ([]api.Record, error) {
	known, err := s.client.SIsMember(ctx, s.keyAll(), instanceID).Result()
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, ErrInstanceNotIndexed
	}

	lines, err := s.client.LRange(ctx, s.keyRecords(instanceID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeLines(lines)
}

func (s *RedisRecordIndex) ListInstances(ctx context.Context, filter IndexFilter) ([]IndexedInstance, error) {
	key := s.keyAll()
	if filter.Status != "" {
		key = s.keyStatus(filter.Status)
	}

	ids, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.keyInstance(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]IndexedInstance, 0, len(ids))
	for i, id := range ids {
		h := cmds[i].Val()
		count, _ := strconv.Atoi(h["records"])
		updated, _ := strconv.ParseInt(h["updated_at"], 10, 64)
		out = append(out, IndexedInstance{
			InstanceID: id,
			Status:     api.InstanceStatus(h["status"]),
			Records:    count,
			UpdatedAt:  time.Unix(0, updated),
		})
	}
	return out, nil
}

// Close does not close the client; it belongs to the caller.
func (s *RedisRecordIndex) Close() error { return nil }
