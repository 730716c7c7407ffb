// Package sqlite contains the concrete implementation of the persistence
// layer using GORM over a local SQLite file.
package sqlite

import (
	"log/slog"

	"echotrail/config"
	"echotrail/internal/infra/persistence/model"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultStoragePath = "echotrail.db"

// Params defines the dependencies for opening the store.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// New opens the SQLite store and performs schema migration.
func New(params Params) (*gorm.DB, error) {
	path := defaultStoragePath
	if params.Config.Storage != nil && params.Config.Storage.Path != "" {
		path = params.Config.Storage.Path
	}

	return Open(path, params.Logger)
}

// Open opens the store at the given path. A single connection keeps every
// key write serialized at the driver level.
func Open(path string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite store at %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		return nil, errors.Wrap(err, "migrate local state table")
	}

	if log != nil {
		log.Info("Local store initialized", slog.String("path", path))
	}

	return db, nil
}
