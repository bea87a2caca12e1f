package volume

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/storage"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/annel0/voxelworld/internal/worldgen"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPager заполняет чанки камнем и считает вызовы по регионам
type countingPager struct {
	mu       sync.Mutex
	pageIns  map[voxel.Region]int
	pageOuts map[voxel.Region]int
	calls    atomic.Int32
	gate     chan struct{}
	fail     error
	// onPageOut вызывается внутри PageOut
	onPageOut func(chunk *voxel.Chunk)
}

func newCountingPager() *countingPager {
	return &countingPager{pageIns: map[voxel.Region]int{}, pageOuts: map[voxel.Region]int{}}
}

func (p *countingPager) PageIn(ctx context.Context, chunk *voxel.Chunk) (voxel.PageInResult, error) {
	p.calls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	if p.fail != nil {
		return voxel.PageFailed, p.fail
	}
	r := chunk.Region()
	chunk.SetVoxel(r.Lower.X, r.Lower.Y, r.Lower.Z, voxel.CreateVoxel(voxel.Rock, 0))
	chunk.ClearChanges()

	p.mu.Lock()
	p.pageIns[r]++
	p.mu.Unlock()
	return voxel.PageGenerated, nil
}

func (p *countingPager) PageOut(ctx context.Context, chunk *voxel.Chunk) {
	if p.onPageOut != nil {
		p.onPageOut(chunk)
	}
	p.mu.Lock()
	p.pageOuts[chunk.Region()]++
	p.mu.Unlock()
}

func (p *countingPager) outs() map[voxel.Region]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[voxel.Region]int, len(p.pageOuts))
	for k, v := range p.pageOuts {
		out[k] = v
	}
	return out
}

func quietLogger() *logging.Logger {
	return logging.NewWriterLogger("volume-test", nil, nil)
}

func newTestVolume(t *testing.T, pager voxel.Pager, maxResident int, reg prometheus.Registerer) *PagedVolume {
	t.Helper()
	v, err := New(pager, Options{ChunkWidth: 16, ChunkHeight: 64, MaxResident: maxResident, Registerer: reg, Logger: quietLogger()})
	require.NoError(t, err)
	return v
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)

	_, err = New(newCountingPager(), Options{ChunkWidth: 15})
	assert.Error(t, err)

	v, err := New(newCountingPager(), Options{Logger: quietLogger()})
	require.NoError(t, err)
	r := v.ChunkRegion(vec.Vec3{X: 33, Y: 10, Z: -1})
	assert.Equal(t, vec.Vec3{X: 32, Y: 0, Z: -32}, r.Lower)
	assert.Equal(t, vec.Vec3{X: 63, Y: voxel.MaxHeight, Z: -1}, r.Upper)
}

func TestChunkBecomesResidentAfterPageIn(t *testing.T) {
	pager := newCountingPager()
	v := newTestVolume(t, pager, 4, nil)
	ctx := context.Background()

	_, ok := v.ResidentChunk(vec.Vec3{X: 1, Y: 1, Z: 1})
	assert.False(t, ok)

	c, err := v.Chunk(ctx, vec.Vec3{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	assert.Equal(t, voxel.Rock, c.Voxel(0, 0, 0).Material)

	again, ok := v.ResidentChunk(vec.Vec3{X: 15, Y: 63, Z: 15})
	require.True(t, ok)
	assert.Same(t, c, again)

	vox, err := v.Voxel(ctx, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, voxel.Rock, vox.Material)
	assert.Equal(t, 1, pager.pageIns[c.Region()])
}

func TestConcurrentRequestsPageInOnce(t *testing.T) {
	pager := newCountingPager()
	pager.gate = make(chan struct{})
	v := newTestVolume(t, pager, 4, nil)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*voxel.Chunk, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := v.Chunk(context.Background(), vec.Vec3{X: i, Y: 0, Z: i})
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	require.Eventually(t, func() bool { return pager.calls.Load() >= 1 }, time.Second, time.Millisecond)
	close(pager.gate)
	wg.Wait()

	assert.Equal(t, int32(1), pager.calls.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestEvictionPagesOutExactlyOnce(t *testing.T) {
	pager := newCountingPager()
	reg := prometheus.NewRegistry()
	v := newTestVolume(t, pager, 2, reg)
	ctx := context.Background()

	a, _ := v.Chunk(ctx, vec.Vec3{X: 0})
	b, _ := v.Chunk(ctx, vec.Vec3{X: 16})
	_, _ = v.Chunk(ctx, vec.Vec3{X: 0}) // a становится последним использованным
	_, err := v.Chunk(ctx, vec.Vec3{X: 32})
	require.NoError(t, err)

	assert.Equal(t, 2, v.Len())
	_, ok := v.ResidentChunk(vec.Vec3{X: 16})
	assert.False(t, ok, "вытеснен наименее используемый чанк")
	_, ok = v.ResidentChunk(vec.Vec3{X: 0})
	assert.True(t, ok)

	outs := pager.outs()
	assert.Equal(t, 1, outs[b.Region()])
	assert.Zero(t, outs[a.Region()])
	assert.Equal(t, 1.0, testutil.ToFloat64(v.evictions))
	assert.Equal(t, 2.0, testutil.ToFloat64(v.resident))

	require.NoError(t, v.FlushAll(ctx))
	outs = pager.outs()
	assert.Equal(t, 1, outs[a.Region()])
	assert.Equal(t, 1, outs[b.Region()], "вытесненный чанк не выгружается повторно")
	assert.Zero(t, v.Len())
}

func TestPageInErrorLeavesNothingResident(t *testing.T) {
	pager := newCountingPager()
	pager.fail = errors.New("bad region")
	v := newTestVolume(t, pager, 2, nil)

	_, err := v.Chunk(context.Background(), vec.Vec3{})
	assert.ErrorIs(t, err, pager.fail)
	assert.Zero(t, v.Len())
}

func TestDropDiscardsWithoutPageOut(t *testing.T) {
	pager := newCountingPager()
	v := newTestVolume(t, pager, 8, nil)
	ctx := context.Background()
	for x := 0; x < 64; x += 16 {
		_, err := v.Chunk(ctx, vec.Vec3{X: x})
		require.NoError(t, err)
	}

	n := v.Drop(voxel.RegionFromBounds(10, 0, 0, 20, 10, 10))
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, v.Len())
	assert.Empty(t, pager.outs())
}

func TestSaveChangedKeepsChunks(t *testing.T) {
	pager := newCountingPager()
	v := newTestVolume(t, pager, 8, nil)
	ctx := context.Background()

	require.NoError(t, v.SetVoxel(ctx, 3, 3, 3, voxel.CreateVoxel(voxel.Sand, 0)))
	_, err := v.Chunk(ctx, vec.Vec3{X: 100})
	require.NoError(t, err)

	assert.Equal(t, 1, v.SaveChanged(ctx))
	assert.Equal(t, 0, v.SaveChanged(ctx))
	assert.Equal(t, 2, v.Len())
	assert.Len(t, pager.outs(), 1)
}

func TestSaveChangedKeepsConcurrentEdits(t *testing.T) {
	pager := newCountingPager()
	v := newTestVolume(t, pager, 8, nil)
	ctx := context.Background()

	require.NoError(t, v.SetVoxel(ctx, 3, 3, 3, voxel.CreateVoxel(voxel.Sand, 0)))
	edited := false
	pager.onPageOut = func(chunk *voxel.Chunk) {
		if !edited {
			edited = true
			chunk.SetVoxel(4, 4, 4, voxel.CreateVoxel(voxel.Rock, 0))
		}
	}

	assert.Equal(t, 1, v.SaveChanged(ctx))
	chunk, ok := v.ResidentChunk(vec.Vec3{X: 3, Y: 3, Z: 3})
	require.True(t, ok)
	assert.True(t, chunk.HasChanges(), "правка во время сохранения не теряется")

	assert.Equal(t, 1, v.SaveChanged(ctx))
	assert.False(t, chunk.HasChanges())
	assert.Equal(t, 0, v.SaveChanged(ctx))
}

func TestFlushAllWithCancelledContextSavesEverything(t *testing.T) {
	pager := newCountingPager()
	v := newTestVolume(t, pager, 8, nil)
	for i := 0; i < 3; i++ {
		_, err := v.Chunk(context.Background(), vec.Vec3{X: i * 16})
		require.NoError(t, err)
	}

	var cancelledSaves atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wrapped := &ctxCheckingPager{countingPager: pager, cancelled: &cancelledSaves}
	v.pager = wrapped

	err := v.FlushAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, v.Len())
	outs := pager.outs()
	assert.Len(t, outs, 3, "каждый чанк выгружен несмотря на отмену")
	for region, n := range outs {
		assert.Equal(t, 1, n, region.String())
	}
	assert.Zero(t, cancelledSaves.Load(), "PageOut получает неотменённый контекст")
}

// ctxCheckingPager считает PageOut, получившие отменённый контекст
type ctxCheckingPager struct {
	*countingPager
	cancelled *atomic.Int32
}

func (p *ctxCheckingPager) PageOut(ctx context.Context, chunk *voxel.Chunk) {
	if ctx.Err() != nil {
		p.cancelled.Add(1)
	}
	p.countingPager.PageOut(ctx, chunk)
}

func TestWithWorldPager(t *testing.T) {
	b := biome.NewBuilder(11)
	require.NoError(t, b.AddBiome(biome.DefaultDefinition))
	mgr, zones, err := b.Build()
	require.NoError(t, err)

	persist := storage.NewMemoryPersister()
	pager, err := worldgen.New(worldgen.Options{
		Context:   worldgen.DefaultWorldContext(),
		Seed:      11,
		Biomes:    mgr,
		Zones:     zones,
		Persister: persist,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	v, err := New(pager, Options{ChunkWidth: 16, MaxResident: 1, Logger: quietLogger()})
	require.NoError(t, err)
	pager.Attach(v)
	ctx := context.Background()

	first, err := v.Chunk(ctx, vec.Vec3{X: 5, Y: 5, Z: 5})
	require.NoError(t, err)
	want := first.Voxels()

	_, err = v.Chunk(ctx, vec.Vec3{X: 40})
	require.NoError(t, err)
	assert.Equal(t, 1, persist.Len(), "вытесненный чанк сохранен")

	reloaded, err := v.Chunk(ctx, vec.Vec3{X: 5, Y: 5, Z: 5})
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Equal(t, want, reloaded.Voxels())

	require.NoError(t, pager.Shutdown(ctx))
	assert.Zero(t, v.Len())
	assert.Equal(t, 2, persist.Len())
}
