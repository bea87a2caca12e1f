package worldgen

import (
	"context"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
)

// ChunkPersister сохраняет и загружает содержимое чанков.
// Реализации должны быть безопасны для одновременных вызовов на разных регионах.
type ChunkPersister interface {
	// Load возвращает сохраненные воксели региона; found=false, если данных нет
	Load(ctx context.Context, region voxel.Region, seed int64) (data []voxel.Voxel, found bool, err error)
	Save(ctx context.Context, chunk *voxel.Chunk, seed int64) error
	Erase(ctx context.Context, region voxel.Region, seed int64) error
}

// TreeProvider выдаёт префабы по ключу (архетип, вариант)
type TreeProvider interface {
	Tree(archetype string, variant int) (voxel.VolumeReader, bool)
	Cloud(variant int) (voxel.VolumeReader, bool)
	Variants() int
}

// ChunkLookup даёт доступ к уже загруженным чанкам соседей
type ChunkLookup interface {
	// ResidentChunk возвращает загруженный чанк, содержащий pos
	ResidentChunk(pos vec.Vec3) (*voxel.Chunk, bool)
}

// Volume - контейнер чанков, к которому подключается генератор
type Volume interface {
	ChunkLookup
	FlushAll(ctx context.Context) error
}
