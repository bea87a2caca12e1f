package storage

import (
	"fmt"

	"github.com/annel0/voxelworld/internal/voxel"
)

// ChunkKey возвращает ключ чанка: зерно мира и границы региона
func ChunkKey(region voxel.Region, seed int64) string {
	return fmt.Sprintf("chunk:%d:%d:%d:%d:%d:%d:%d", seed,
		region.Lower.X, region.Lower.Y, region.Lower.Z,
		region.Upper.X, region.Upper.Y, region.Upper.Z)
}

// ParseChunkKey разбирает ключ, созданный ChunkKey
func ParseChunkKey(key string) (voxel.Region, int64, error) {
	var seed int64
	var r voxel.Region
	_, err := fmt.Sscanf(key, "chunk:%d:%d:%d:%d:%d:%d:%d", &seed,
		&r.Lower.X, &r.Lower.Y, &r.Lower.Z, &r.Upper.X, &r.Upper.Y, &r.Upper.Z)
	if err != nil {
		return voxel.Region{}, 0, fmt.Errorf("некорректный ключ чанка %q: %w", key, err)
	}
	return r, seed, nil
}
