package kvstore

import (
	"errors"
	"syscall"

	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// LevelDB implements Store on a goleveldb database.
type LevelDB struct {
	db  *leveldb.DB
	log *zap.Logger
}

// OpenLevelDB opens (or creates) a LevelDB database at path.
func OpenLevelDB(path string, log *zap.Logger) (*LevelDB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		log.Error("failed to open database", zap.String("path", path), zap.Error(err))
		return nil, kerrors.Wrap(kerrors.ErrAccessDenied, "opening database")
	}

	log.Debug("database opened", zap.String("path", path))
	return &LevelDB{db: db, log: log}, nil
}

// Get returns the value for key, or ErrKeyNotFound if absent.
func (s *LevelDB) Get(key string) ([]byte, error) {
	value, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, classify(err)
	}
	return value, nil
}

// Put stores value under key.
func (s *LevelDB) Put(key string, value []byte) error {
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		s.log.Error("database write failed", zap.String("key", key), zap.Error(err))
		return classify(err)
	}
	return nil
}

// Delete removes key. Absent keys are not an error.
func (s *LevelDB) Delete(key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil
		}
		s.log.Error("database delete failed", zap.String("key", key), zap.Error(err))
		return classify(err)
	}
	return nil
}

// Close releases the database.
func (s *LevelDB) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, leveldb.ErrClosed) {
		return classify(err)
	}
	return nil
}

// classify maps substrate failures onto the storage error taxonomy:
// out-of-space becomes QuotaExceeded, everything else AccessDenied.
func classify(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return kerrors.Wrap(kerrors.ErrQuotaExceeded, "writing to database")
	}
	return kerrors.Wrap(kerrors.ErrAccessDenied, "accessing database")
}
