package prefab

import (
	"sync"
	"testing"

	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSolid(v voxel.VolumeReader) (int, map[voxel.VoxelType]int) {
	r := v.Region()
	total := 0
	byType := make(map[voxel.VoxelType]int)
	for y := r.Lower.Y; y <= r.Upper.Y; y++ {
		for z := r.Lower.Z; z <= r.Upper.Z; z++ {
			for x := r.Lower.X; x <= r.Upper.X; x++ {
				vox := v.Voxel(x, y, z)
				if vox.IsAir() {
					continue
				}
				total++
				byType[vox.Material]++
			}
		}
	}
	return total, byType
}

func TestTreeArchetypes(t *testing.T) {
	lib := NewLibrary(0)
	assert.Equal(t, DefaultVariants, lib.Variants())

	for _, name := range Archetypes() {
		for variant := 0; variant < lib.Variants(); variant++ {
			tree, ok := lib.Tree(name, variant)
			require.True(t, ok, "архетип %s должен существовать", name)

			base := tree.Voxel(0, 0, 0)
			assert.True(t, voxel.IsTreeMaterial(base.Material), "%s/%d: основание должно быть частью дерева", name, variant)

			total, byType := countSolid(tree)
			assert.Greater(t, total, 0)
			for material := range byType {
				assert.True(t, voxel.IsTreeMaterial(material), "%s: лишний материал %s", name, material)
			}
			if name != "cactus" {
				assert.Greater(t, byType[voxel.Wood], 0, "%s: нет ствола", name)
			}
		}
	}
}

func TestTreeUnknownArchetype(t *testing.T) {
	lib := NewLibrary(2)
	tree, ok := lib.Tree("baobab", 0)
	assert.False(t, ok)
	assert.Nil(t, tree)
}

func TestTreeDeterministic(t *testing.T) {
	a, _ := NewLibrary(4).Tree("pine", 2)
	b, _ := NewLibrary(4).Tree("pine", 2)
	r := a.Region()
	require.Equal(t, r, b.Region())
	for y := r.Lower.Y; y <= r.Upper.Y; y++ {
		for z := r.Lower.Z; z <= r.Upper.Z; z++ {
			for x := r.Lower.X; x <= r.Upper.X; x++ {
				require.Equal(t, a.Voxel(x, y, z), b.Voxel(x, y, z))
			}
		}
	}
}

func TestVariantNormalization(t *testing.T) {
	lib := NewLibrary(3)
	a, _ := lib.Tree("dome", 1)
	b, _ := lib.Tree("dome", 4)
	c, _ := lib.Tree("dome", -2)
	assert.Same(t, a, b, "вариант берётся по модулю")
	assert.Same(t, a, c)
}

func TestCloud(t *testing.T) {
	lib := NewLibrary(2)
	cloud, ok := lib.Cloud(5)
	require.True(t, ok)
	total, byType := countSolid(cloud)
	assert.Greater(t, total, 0)
	assert.Equal(t, total, byType[voxel.Cloud], "облако состоит только из облачных вокселей")

	again, _ := lib.Cloud(1)
	assert.Same(t, cloud, again)
}

func TestLibraryConcurrent(t *testing.T) {
	lib := NewLibrary(4)
	var wg sync.WaitGroup
	results := make([]voxel.VolumeReader, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = lib.Tree("ellipsis", 1)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r, "все горутины получают один и тот же префаб")
	}
}
