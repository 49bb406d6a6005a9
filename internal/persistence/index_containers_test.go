package persistence

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/wftrack/internal/testutil"
)

const redisTestPrefix = "wftrack:test:"

func TestPostgresRecordIndex(t *testing.T) {
	dsn := testutil.GetPostgresDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	idx, err := NewPostgresRecordIndex(db)
	if err != nil {
		t.Fatalf("init postgres index: %v", err)
	}

	suite.Run(t, &RecordIndexTestSuite{
		newIndex: func() RecordIndex {
			if _, err := db.Exec(`TRUNCATE tracked_records, tracked_instances`); err != nil {
				t.Fatalf("truncate: %v", err)
			}
			return idx
		},
	})
}

func TestRedisRecordIndex(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testutil.GetRedisAddress(t)})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping failed: %v", err)
	}

	suite.Run(t, &RecordIndexTestSuite{
		newIndex: func() RecordIndex {
			// Clean up all keys with this prefix.
			iter := client.Scan(ctx, 0, redisTestPrefix+"*", 0).Iterator()
			for iter.Next(ctx) {
				if err := client.Del(ctx, iter.Val()).Err(); err != nil {
					t.Fatalf("redis DEL %q failed: %v", iter.Val(), err)
				}
			}
			if err := iter.Err(); err != nil {
				t.Fatalf("redis SCAN failed: %v", err)
			}
			return NewRedisRecordIndex(client, redisTestPrefix)
		},
	})
}

func TestMongoRecordIndex(t *testing.T) {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testutil.GetMongoURI(t)))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	suite.Run(t, &RecordIndexTestSuite{
		newIndex: func() RecordIndex {
			if err := client.Database("wftrack_test").Collection("instances").Drop(ctx); err != nil {
				t.Fatalf("drop collection: %v", err)
			}
			return NewMongoRecordIndex(client, "wftrack_test", "instances")
		},
	})
}
