// Package worldgen генерирует воксельный рельеф по запросу контейнера чанков.
// WorldPager реализует voxel.Pager: при промахе кеша загружает чанк из хранилища
// или синтезирует его из шумов, биомов и зон, затем расставляет деревья.
package worldgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNegativeLowerY - регион начинается ниже дна мира
	ErrNegativeLowerY = errors.New("нижняя граница региона ниже дна мира")
	// ErrRegionStride - регион не выровнен по сетке столбцов генератора
	ErrRegionStride = errors.New("регион не выровнен по сетке столбцов")
)

// Options - зависимости генератора
type Options struct {
	Context   WorldContext
	Seed      int64
	Biomes    *biome.Manager
	Zones     *biome.ZoneIndex
	Persister ChunkPersister // nil - без хранилища
	Trees     TreeProvider   // nil - без деревьев и облаков
	Metrics   *Metrics       // nil - без метрик
	Logger    *logging.Logger
}

// WorldPager - генератор рельефа, реализующий voxel.Pager
type WorldPager struct {
	zones     *biome.ZoneIndex
	persister ChunkPersister
	trees     TreeProvider
	metrics   *Metrics
	logger    *logging.Logger
	tracer    trace.Tracer

	mu      sync.RWMutex
	terrain *terrain
	volume  Volume
}

var _ voxel.Pager = (*WorldPager)(nil)

// New проверяет конфигурацию и создаёт генератор
func New(opts Options) (*WorldPager, error) {
	if opts.Biomes == nil {
		return nil, fmt.Errorf("не задана таблица биомов: %w", biome.ErrNoBiomes)
	}
	if err := opts.Context.Validate(); err != nil {
		return nil, fmt.Errorf("некорректные параметры мира: %w", err)
	}
	zones := opts.Zones
	if zones == nil {
		zones = &biome.ZoneIndex{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetWorldgenLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &WorldPager{
		zones:     zones,
		persister: opts.Persister,
		trees:     opts.Trees,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer("github.com/annel0/voxelworld/internal/worldgen"),
		terrain:   newTerrain(opts.Context, opts.Seed, vec.Vec2Float{}, zones, opts.Biomes),
	}, nil
}

// Attach подключает контейнер чанков: через него проверяются соседи
// при расстановке деревьев, и его сбрасывает Shutdown.
func (p *WorldPager) Attach(volume Volume) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

// SetSeed меняет зерно мира: шумы рельефа, климат биомов и цвета вокселей.
// Уже сохраненные чанки не перегенерируются.
func (p *WorldPager) SetSeed(seed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.terrain
	p.terrain = newTerrain(t.ctx, seed, t.offset, p.zones, t.biomes)
}

// SetNoiseOffset сдвигает все выборки шумов рельефа
func (p *WorldPager) SetNoiseOffset(offset vec.Vec2Float) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := *p.terrain
	t.offset = offset
	p.terrain = &t
}

// Seed возвращает текущее зерно мира
func (p *WorldPager) Seed() int64 {
	return p.snapshot().seed
}

// Context возвращает параметры шумов
func (p *WorldPager) Context() WorldContext {
	return p.snapshot().ctx
}

func (p *WorldPager) snapshot() *terrain {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.terrain
}

func (p *WorldPager) attachedVolume() Volume {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// TerrainHeight возвращает высоту первой ячейки воздуха над поверхностью столбца
// (x, z) для полного по высоте чанка. Совпадает с тем, что даёт генерация.
func (p *WorldPager) TerrainHeight(x, z int) int {
	t := p.snapshot()
	x, z = snap(x), snap(z)
	return t.height(x, 0, z, t.noiseValue(x, z))
}

// validateRegion проверяет контракт вызывающей стороны
func validateRegion(region voxel.Region) error {
	if region.Lower.Y < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeLowerY, region)
	}
	if !region.IsValid() ||
		region.Width()%columnStride != 0 || region.Depth()%columnStride != 0 ||
		snap(region.Lower.X) != region.Lower.X || snap(region.Lower.Z) != region.Lower.Z {
		return fmt.Errorf("%w: %s", ErrRegionStride, region)
	}
	return nil
}

// PageIn заполняет чанк: загружает его из хранилища или генерирует.
// Ошибка возвращается только при нарушении контракта региона, вместе с voxel.PageFailed.
func (p *WorldPager) PageIn(ctx context.Context, chunk *voxel.Chunk) (voxel.PageInResult, error) {
	region := chunk.Region()
	ctx, span := p.tracer.Start(ctx, "worldgen.PageIn", trace.WithAttributes(
		attribute.String("region", region.String()),
	))
	defer span.End()

	if err := validateRegion(region); err != nil {
		p.metrics.PageIns.WithLabelValues("rejected").Inc()
		span.SetStatus(codes.Error, err.Error())
		return voxel.PageFailed, err
	}

	t := p.snapshot()

	if p.load(ctx, chunk, t.seed) {
		p.metrics.PageIns.WithLabelValues("loaded").Inc()
		span.SetAttributes(attribute.String("result", voxel.PageLoaded.String()))
		return voxel.PageLoaded, nil
	}

	start := time.Now()
	p.generate(t, chunk)
	p.metrics.GenerationSeconds.Observe(time.Since(start).Seconds())
	p.metrics.PageIns.WithLabelValues("generated").Inc()
	span.SetAttributes(attribute.String("result", voxel.PageGenerated.String()))
	return voxel.PageGenerated, nil
}

// load пытается загрузить чанк. Ошибка хранилища не фатальна: чанк генерируется заново.
func (p *WorldPager) load(ctx context.Context, chunk *voxel.Chunk, seed int64) bool {
	if p.persister == nil {
		return false
	}
	data, found, err := p.persister.Load(ctx, chunk.Region(), seed)
	if err != nil {
		p.metrics.PersistErrors.WithLabelValues("load").Inc()
		p.logger.Warn("Ошибка загрузки чанка %s: %v", chunk.Region(), err)
		return false
	}
	if !found {
		return false
	}
	if !chunk.LoadVoxels(data) {
		p.metrics.PersistErrors.WithLabelValues("load").Inc()
		p.logger.Warn("Размер сохраненного чанка %s не совпадает с регионом: %d", chunk.Region(), len(data))
		return false
	}
	return true
}

func (p *WorldPager) generate(t *terrain, chunk *voxel.Chunk) {
	region := chunk.Region()
	p.logger.Debug("Создание чанка %s", region)

	cls := t.biomes.NewClassifier()
	minsY := region.Lower.Y
	column := make([]voxel.Voxel, max(voxel.MaxTerrainHeight, voxel.MaxWaterHeight))

	for z := region.Lower.Z; z <= region.Upper.Z; z += columnStride {
		for x := region.Lower.X; x <= region.Upper.X; x += columnStride {
			n := t.fillColumn(cls, x, minsY, z, column)
			if n == 0 {
				continue
			}
			chunk.SetColumns(x, minsY, z, columnStride, columnStride, column[:n])
		}
	}

	if p.trees != nil {
		p.placeTrees(t, cls, chunk)
		if t.ctx.Clouds {
			p.placeClouds(t, cls, chunk)
		}
	}
	chunk.ClearChanges()
}

// PageOut передаёт чанк в хранилище. Ошибка записи только логируется:
// рельеф всегда можно сгенерировать заново.
func (p *WorldPager) PageOut(ctx context.Context, chunk *voxel.Chunk) {
	p.metrics.PageOuts.Inc()
	if p.persister == nil {
		return
	}
	ctx, span := p.tracer.Start(ctx, "worldgen.PageOut", trace.WithAttributes(
		attribute.String("region", chunk.Region().String()),
	))
	defer span.End()

	if err := p.persister.Save(ctx, chunk, p.Seed()); err != nil {
		p.metrics.PersistErrors.WithLabelValues("save").Inc()
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn("Ошибка сохранения чанка %s: %v", chunk.Region(), err)
	}
}

// Erase удаляет сохраненные данные региона
func (p *WorldPager) Erase(ctx context.Context, region voxel.Region) error {
	if p.persister == nil {
		return nil
	}
	if err := p.persister.Erase(ctx, region, p.Seed()); err != nil {
		p.metrics.PersistErrors.WithLabelValues("erase").Inc()
		return fmt.Errorf("ошибка удаления региона %s: %w", region, err)
	}
	return nil
}

// Shutdown выгружает все чанки подключенного контейнера и отключает его
func (p *WorldPager) Shutdown(ctx context.Context) error {
	volume := p.attachedVolume()
	if volume == nil {
		return nil
	}
	err := volume.FlushAll(ctx)
	p.Attach(nil)
	if err != nil {
		return fmt.Errorf("ошибка выгрузки чанков: %w", err)
	}
	return nil
}
