package storage

import (
	"context"
	"sync"

	"github.com/annel0/voxelworld/internal/voxel"
)

// MemoryPersister хранит чанки в памяти процесса (тесты, одноразовая генерация)
type MemoryPersister struct {
	mu     sync.RWMutex
	chunks map[string][]voxel.Voxel
	saves  int
}

// NewMemoryPersister создаёт пустое хранилище
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{chunks: make(map[string][]voxel.Voxel)}
}

func (mp *MemoryPersister) Load(ctx context.Context, region voxel.Region, seed int64) ([]voxel.Voxel, bool, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	data, ok := mp.chunks[ChunkKey(region, seed)]
	if !ok {
		return nil, false, nil
	}
	out := make([]voxel.Voxel, len(data))
	copy(out, data)
	return out, true, nil
}

func (mp *MemoryPersister) Save(ctx context.Context, chunk *voxel.Chunk, seed int64) error {
	data := chunk.Voxels()

	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.chunks[ChunkKey(chunk.Region(), seed)] = data
	mp.saves++
	return nil
}

func (mp *MemoryPersister) Erase(ctx context.Context, region voxel.Region, seed int64) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	delete(mp.chunks, ChunkKey(region, seed))
	return nil
}

// Len возвращает количество сохраненных чанков
func (mp *MemoryPersister) Len() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return len(mp.chunks)
}

// Saves возвращает общее число вызовов Save
func (mp *MemoryPersister) Saves() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.saves
}
