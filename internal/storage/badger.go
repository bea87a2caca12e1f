package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/dgraph-io/badger/v3"
)

// ErrNotReady - хранилище закрыто или не инициализировано
var ErrNotReady = errors.New("хранилище не готово")

// BadgerPersister хранит чанки в BadgerDB
type BadgerPersister struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerPersister открывает (или создаёт) базу чанков в каталоге dataPath/chunks
func NewBadgerPersister(dataPath string) (*BadgerPersister, error) {
	dbPath := filepath.Join(dataPath, "chunks")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerPersister{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Path возвращает каталог базы
func (bp *BadgerPersister) Path() string {
	return bp.dbPath
}

// Close закрывает хранилище
func (bp *BadgerPersister) Close() error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if !bp.isReady {
		return nil
	}

	bp.isReady = false
	return bp.db.Close()
}

// Save сохраняет полное содержимое чанка
func (bp *BadgerPersister) Save(ctx context.Context, chunk *voxel.Chunk, seed int64) error {
	bp.mutex.RLock()
	defer bp.mutex.RUnlock()

	if !bp.isReady {
		return ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeVoxels(chunk.Voxels())
	if err != nil {
		return fmt.Errorf("ошибка сериализации чанка: %w", err)
	}

	key := []byte(ChunkKey(chunk.Region(), seed))
	err = bp.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения чанка в БД: %w", err)
	}
	return nil
}

// Load загружает воксели региона. Отсутствие записи не является ошибкой.
func (bp *BadgerPersister) Load(ctx context.Context, region voxel.Region, seed int64) ([]voxel.Voxel, bool, error) {
	bp.mutex.RLock()
	defer bp.mutex.RUnlock()

	if !bp.isReady {
		return nil, false, ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data []byte
	err := bp.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ChunkKey(region, seed)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка загрузки чанка из БД: %w", err)
	}

	voxels, err := DecodeVoxels(data)
	if err != nil {
		return nil, false, err
	}
	return voxels, true, nil
}

// Erase удаляет запись региона
func (bp *BadgerPersister) Erase(ctx context.Context, region voxel.Region, seed int64) error {
	bp.mutex.RLock()
	defer bp.mutex.RUnlock()

	if !bp.isReady {
		return ErrNotReady
	}

	err := bp.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(ChunkKey(region, seed)))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления чанка из БД: %w", err)
	}
	return nil
}

// Count возвращает количество сохраненных чанков
func (bp *BadgerPersister) Count() (int, error) {
	bp.mutex.RLock()
	defer bp.mutex.RUnlock()

	if !bp.isReady {
		return 0, ErrNotReady
	}

	count := 0
	err := bp.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("chunk:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
