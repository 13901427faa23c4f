package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"travel_guide/internal/domain"
	"travel_guide/internal/shared"
	mongorepo "travel_guide/internal/storage/mongo"
	mysqlrepo "travel_guide/internal/storage/mysql"
)

// Store is what the processes need from whichever backend STORE_DRIVER selects.
type Store interface {
	domain.CountryRepository
	domain.UserRepository
}

// Open connects to the configured backend and checks it is reachable. The
// returned func releases the connection.
func Open(ctx context.Context, cfg shared.Config) (Store, func(), error) {
	switch cfg.StoreDriver {
	case shared.DriverMongo:
		cl, db, err := mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		repo := mongorepo.New(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = cl.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, func() { _ = cl.Disconnect(context.Background()) }, nil
	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql ping: %w", err)
		}
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
