package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/wftrack/pkg/api"
)

// MongoRecordIndex is a RecordIndex backed by MongoDB. Each instance is one
// document holding its summary and the array of record lines.
type MongoRecordIndex struct {
	coll *mongo.Collection
}

var _ RecordIndex = (*MongoRecordIndex)(nil)

// NewMongoRecordIndex creates a Mongo-backed record index.
// dbName defaults to "wftrack" if empty, collName defaults to "instances".
func NewMongoRecordIndex(client *mongo.Client, dbName, collName string) *MongoRecordIndex {
	if dbName == "" {
		dbName = "wftrack"
	}
	if collName == "" {
		collName = "instances"
	}

	return &MongoRecordIndex{
		coll: client.Database(dbName).Collection(collName),
	}
}

type mongoRecordDoc struct {
	Kind  string `bson:"kind"`
	Order int    `bson:"order"`
	Line  string `bson:"line"`
}

type mongoInstanceDoc struct {
	ID        string           `bson:"_id"`
	Status    string           `bson:"status"`
	Count     int              `bson:"count"`
	UpdatedAt int64            `bson:"updated_at"`
	Records   []mongoRecordDoc `bson:"records,omitempty"`
}

func (s *MongoRecordIndex) IndexBatch(ctx context.Context, instanceID string, status api.InstanceStatus, records []api.Record) error {
	rows, err := encodeRows(records)
	if err != nil {
		return err
	}

	docs := make([]mongoRecordDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, mongoRecordDoc{Kind: string(r.Kind), Order: r.Order, Line: r.Line})
	}

	set := bson.M{"updated_at": time.Now().UnixNano()}
	update := bson.M{
		"$push": bson.M{"records": bson.M{"$each": docs}},
		"$inc":  bson.M{"count": len(docs)},
		"$set":  set,
	}
	if status != "" {
		set["status"] = string(status)
	} else {
		update["$setOnInsert"] = bson.M{"status": ""}
	}

	_, err = s.coll.UpdateByID(ctx, instanceID, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoRecordIndex) ListRecords(ctx context.Context, instanceID string) ([]api.Record, error) {
	var doc mongoInstanceDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": instanceID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInstanceNotIndexed
		}
		return nil, err
	}

	lines := make([]string, 0, len(doc.Records))
	for _, r := range doc.Records {
		lines = append(lines, r.Line)
	}
	return decodeLines(lines)
}

func (s *MongoRecordIndex) ListInstances(ctx context.Context, filter IndexFilter) ([]IndexedInstance, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"records": 0})

	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []IndexedInstance
	for cur.Next(ctx) {
		var doc mongoInstanceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, IndexedInstance{
			InstanceID: doc.ID,
			Status:     api.InstanceStatus(doc.Status),
			Records:    doc.Count,
			UpdatedAt:  time.Unix(0, doc.UpdatedAt),
		})
	}
	return out, cur.Err()
}

// Close does not disconnect the client; it belongs to the caller.
func (s *MongoRecordIndex) Close() error { return nil }
