package config

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/petrijr/wftrack/internal/persistence"
)

// OpenIndex opens the record index selected by cfg.Index. The returned
// closer releases the underlying client and must be called once the index
// is no longer used.
func OpenIndex(ctx context.Context, cfg *Config) (persistence.RecordIndex, func() error, error) {
	nop := func() error { return nil }
	ic := cfg.Index

	switch ic.Driver {
	case "", DriverNone:
		return persistence.NoopRecordIndex{}, nop, nil

	case DriverMemory:
		return persistence.NewMemoryRecordIndex(), nop, nil

	case DriverSQLite:
		db, err := sql.Open("sqlite", ic.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite index: %w", err)
		}
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		idx, err := persistence.NewSQLiteRecordIndex(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return idx, db.Close, nil

	case DriverPostgres:
		db, err := sql.Open("pgx", ic.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres index: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres index: %w", err)
		}
		idx, err := persistence.NewPostgresRecordIndex(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return idx, db.Close, nil

	case DriverRedis:
		opts, err := redis.ParseURL(ic.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis index: %w", err)
		}
		return persistence.NewRedisRecordIndex(client, ic.Prefix), client.Close, nil

	case DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(ic.DSN))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo index: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ping mongo index: %w", err)
		}
		closer := func() error { return client.Disconnect(context.Background()) }
		return persistence.NewMongoRecordIndex(client, ic.Database, ic.Collection), closer, nil

	default:
		return nil, nil, fmt.Errorf("unknown index driver %q", ic.Driver)
	}
}
