package sqlite

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domainerrors "echotrail/internal/domain/errors"
	"echotrail/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvStore wraps the GORM handle with typed whole-document reads and writes.
// Reads treat missing or corrupt values as absent; a damaged key must never
// take the background task down with it.
type kvStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

func newKVStore(db *gorm.DB, logger *slog.Logger) *kvStore {
	return &kvStore{db: db, logger: logger}
}

// get unmarshals the document under key into out. Returns false when the
// key is absent or its value is unreadable.
func (s *kvStore) get(ctx context.Context, key string, out any) (bool, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domainerrors.NewStorageReadError(err, "read key "+key)
	}

	if err := json.Unmarshal(entry.Value, out); err != nil {
		// Corrupt state reads as empty state.
		s.logger.Warn("Discarding corrupt stored value",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return false, nil
	}

	return true, nil
}

// put replaces the document under key in a single atomic row write.
func (s *kvStore) put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return domainerrors.NewStorageWriteError(err, "encode key "+key)
	}

	entry := model.KVEntry{Key: key, Value: raw, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return domainerrors.NewStorageWriteError(err, "write key "+key)
	}

	return nil
}

// delete removes the key. Deleting an absent key is a no-op.
func (s *kvStore) delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&model.KVEntry{}, "key = ?", key).Error
	if err != nil {
		return domainerrors.NewStorageWriteError(err, "delete key "+key)
	}

	return nil
}
