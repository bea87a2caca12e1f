package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/voxel"
)

// Persister - операции хранилища чанков
type Persister interface {
	Load(ctx context.Context, region voxel.Region, seed int64) ([]voxel.Voxel, bool, error)
	Save(ctx context.Context, chunk *voxel.Chunk, seed int64) error
	Erase(ctx context.Context, region voxel.Region, seed int64) error
}

// TieredPersister читает сначала из горячего уровня, затем из холодного
// (с прогревом горячего), а пишет в оба уровня.
type TieredPersister struct {
	hot    Persister
	cold   Persister
	logger *logging.Logger
}

// NewTieredPersister объединяет горячий и холодный уровни
func NewTieredPersister(hot, cold Persister) *TieredPersister {
	return &TieredPersister{hot: hot, cold: cold, logger: logging.GetStorageLogger()}
}

func (tp *TieredPersister) Load(ctx context.Context, region voxel.Region, seed int64) ([]voxel.Voxel, bool, error) {
	data, found, err := tp.hot.Load(ctx, region, seed)
	if err != nil {
		// Горячий уровень не обязателен
		tp.logger.Warn("Ошибка горячего хранилища для %s: %v", region, err)
	} else if found {
		return data, true, nil
	}

	data, found, err = tp.cold.Load(ctx, region, seed)
	if err != nil || !found {
		return nil, false, err
	}

	// Прогреваем горячий уровень
	chunk := voxel.NewChunk(region)
	if chunk.LoadVoxels(data) {
		if err := tp.hot.Save(ctx, chunk, seed); err != nil {
			tp.logger.Debug("Не удалось прогреть горячее хранилище для %s: %v", region, err)
		}
	}
	return data, true, nil
}

// Save пишет в холодный уровень; ошибка горячего уровня только логируется
func (tp *TieredPersister) Save(ctx context.Context, chunk *voxel.Chunk, seed int64) error {
	if err := tp.cold.Save(ctx, chunk, seed); err != nil {
		return err
	}
	if err := tp.hot.Save(ctx, chunk, seed); err != nil {
		tp.logger.Warn("Ошибка записи в горячее хранилище %s: %v", chunk.Region(), err)
	}
	return nil
}

// Erase удаляет регион из обоих уровней
func (tp *TieredPersister) Erase(ctx context.Context, region voxel.Region, seed int64) error {
	var errs []error
	if err := tp.hot.Erase(ctx, region, seed); err != nil {
		errs = append(errs, fmt.Errorf("горячий уровень: %w", err))
	}
	if err := tp.cold.Erase(ctx, region, seed); err != nil {
		errs = append(errs, fmt.Errorf("холодный уровень: %w", err))
	}
	return errors.Join(errs...)
}
