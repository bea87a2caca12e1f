// Package volume содержит контейнер чанков с подкачкой: держит в памяти
// ограниченное число чанков и обращается к voxel.Pager при промахе и вытеснении.
package volume

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultChunkWidth  = 32
	DefaultChunkHeight = voxel.MaxHeight + 1
	DefaultMaxResident = 256
)

// Options - параметры контейнера
type Options struct {
	ChunkWidth  int // кратно 2
	ChunkHeight int
	MaxResident int
	Registerer  prometheus.Registerer // nil - без регистрации метрик
	Logger      *logging.Logger
}

type entry struct {
	key   vec.Vec3
	chunk *voxel.Chunk
}

// PagedVolume - LRU-кеш чанков поверх voxel.Pager.
// Чанк становится резидентным только после завершения PageIn.
type PagedVolume struct {
	pager  voxel.Pager
	width  int
	height int
	max    int
	logger *logging.Logger

	mu     sync.Mutex
	chunks map[vec.Vec3]*list.Element
	lru    *list.List // в начале - недавно использованные

	inflight singleflight.Group

	resident  prometheus.Gauge
	evictions prometheus.Counter
}

// New создаёт контейнер. Нулевые параметры заменяются значениями по умолчанию.
func New(pager voxel.Pager, opts Options) (*PagedVolume, error) {
	if pager == nil {
		return nil, errors.New("не задан pager")
	}
	if opts.ChunkWidth <= 0 {
		opts.ChunkWidth = DefaultChunkWidth
	}
	if opts.ChunkHeight <= 0 {
		opts.ChunkHeight = DefaultChunkHeight
	}
	if opts.MaxResident <= 0 {
		opts.MaxResident = DefaultMaxResident
	}
	if opts.ChunkWidth%2 != 0 {
		return nil, fmt.Errorf("ширина чанка должна быть четной: %d", opts.ChunkWidth)
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetVolumeLogger()
	}

	v := &PagedVolume{
		pager:  pager,
		width:  opts.ChunkWidth,
		height: opts.ChunkHeight,
		max:    opts.MaxResident,
		logger: opts.Logger,
		chunks: make(map[vec.Vec3]*list.Element),
		lru:    list.New(),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "volume",
			Name:      "resident_chunks",
			Help:      "Количество чанков в памяти.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "volume",
			Name:      "evictions_total",
			Help:      "Количество вытесненных чанков.",
		}),
	}
	if opts.Registerer != nil {
		opts.Registerer.MustRegister(v.resident, v.evictions)
	}
	return v, nil
}

// ChunkRegion возвращает регион чанка, содержащего точку pos
func (v *PagedVolume) ChunkRegion(pos vec.Vec3) voxel.Region {
	return v.regionFor(pos.ToChunkCoords(v.width, v.height))
}

func (v *PagedVolume) regionFor(key vec.Vec3) voxel.Region {
	lower := vec.Vec3{X: key.X * v.width, Y: key.Y * v.height, Z: key.Z * v.width}
	upper := lower.Add(vec.Vec3{X: v.width - 1, Y: v.height - 1, Z: v.width - 1})
	return voxel.NewRegion(lower, upper)
}

// Chunk возвращает чанк, содержащий pos, при необходимости подкачивая его.
// Одновременные запросы одного чанка выполняют PageIn один раз.
func (v *PagedVolume) Chunk(ctx context.Context, pos vec.Vec3) (*voxel.Chunk, error) {
	key := pos.ToChunkCoords(v.width, v.height)
	if c, ok := v.get(key, true); ok {
		return c, nil
	}

	res, err, _ := v.inflight.Do(key.String(), func() (any, error) {
		if c, ok := v.get(key, true); ok {
			return c, nil
		}
		chunk := voxel.NewChunk(v.regionFor(key))
		result, err := v.pager.PageIn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		v.logger.Trace("Чанк %s подкачан (%s)", chunk.Region(), result)
		v.insert(ctx, key, chunk)
		return chunk, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подкачки чанка %s: %w", key, err)
	}
	return res.(*voxel.Chunk), nil
}

// ResidentChunk возвращает чанк, содержащий pos, только если он уже в памяти.
// Порядок вытеснения не меняется.
func (v *PagedVolume) ResidentChunk(pos vec.Vec3) (*voxel.Chunk, bool) {
	return v.get(pos.ToChunkCoords(v.width, v.height), false)
}

func (v *PagedVolume) get(key vec.Vec3, touch bool) (*voxel.Chunk, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	el, ok := v.chunks[key]
	if !ok {
		return nil, false
	}
	if touch {
		v.lru.MoveToFront(el)
	}
	return el.Value.(*entry).chunk, true
}

// insert делает чанк резидентным и вытесняет лишние чанки вне блокировки
func (v *PagedVolume) insert(ctx context.Context, key vec.Vec3, chunk *voxel.Chunk) {
	var evicted []*entry

	v.mu.Lock()
	v.chunks[key] = v.lru.PushFront(&entry{key: key, chunk: chunk})
	for v.lru.Len() > v.max {
		el := v.lru.Back()
		e := el.Value.(*entry)
		v.lru.Remove(el)
		delete(v.chunks, e.key)
		evicted = append(evicted, e)
	}
	v.resident.Set(float64(v.lru.Len()))
	v.mu.Unlock()

	for _, e := range evicted {
		v.evictions.Inc()
		v.pager.PageOut(ctx, e.chunk)
	}
}

// Len возвращает количество резидентных чанков
func (v *PagedVolume) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lru.Len()
}

// Voxel возвращает воксель по мировым координатам
func (v *PagedVolume) Voxel(ctx context.Context, x, y, z int) (voxel.Voxel, error) {
	chunk, err := v.Chunk(ctx, vec.Vec3{X: x, Y: y, Z: z})
	if err != nil {
		return voxel.Voxel{}, err
	}
	return chunk.Voxel(x, y, z), nil
}

// SetVoxel записывает воксель по мировым координатам
func (v *PagedVolume) SetVoxel(ctx context.Context, x, y, z int, vox voxel.Voxel) error {
	chunk, err := v.Chunk(ctx, vec.Vec3{X: x, Y: y, Z: z})
	if err != nil {
		return err
	}
	chunk.SetVoxel(x, y, z, vox)
	return nil
}

// takeAll забирает все резидентные чанки, очищая кеш
func (v *PagedVolume) takeAll() []*entry {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]*entry, 0, v.lru.Len())
	for el := v.lru.Back(); el != nil; el = el.Prev() {
		out = append(out, el.Value.(*entry))
	}
	v.chunks = make(map[vec.Vec3]*list.Element)
	v.lru.Init()
	v.resident.Set(0)
	return out
}

// FlushAll выгружает все резидентные чанки через PageOut.
// Отмена ctx не прерывает выгрузку: каждый изъятый чанк сохраняется,
// а ошибка отмены возвращается после завершения.
func (v *PagedVolume) FlushAll(ctx context.Context) error {
	entries := v.takeAll()
	saveCtx := context.WithoutCancel(ctx)
	for _, e := range entries {
		v.pager.PageOut(saveCtx, e.chunk)
	}
	v.logger.Info("Выгружено чанков: %d", len(entries))
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("выгрузка %d чанков завершена после отмены: %w", len(entries), err)
	}
	return nil
}

// Drop убирает из памяти все чанки, пересекающие region, без PageOut.
// Используется, когда сохраненные данные региона удалены другим узлом.
func (v *PagedVolume) Drop(region voxel.Region) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	dropped := 0
	for key, el := range v.chunks {
		if !overlaps(el.Value.(*entry).chunk.Region(), region) {
			continue
		}
		v.lru.Remove(el)
		delete(v.chunks, key)
		dropped++
	}
	v.resident.Set(float64(v.lru.Len()))
	return dropped
}

func overlaps(a, b voxel.Region) bool {
	return a.Lower.X <= b.Upper.X && b.Lower.X <= a.Upper.X &&
		a.Lower.Y <= b.Upper.Y && b.Lower.Y <= a.Upper.Y &&
		a.Lower.Z <= b.Upper.Z && b.Lower.Z <= a.Upper.Z
}

// changed возвращает резидентные чанки с несохраненными изменениями
func (v *PagedVolume) changed() []*voxel.Chunk {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []*voxel.Chunk
	for el := v.lru.Front(); el != nil; el = el.Next() {
		if c := el.Value.(*entry).chunk; c.HasChanges() {
			out = append(out, c)
		}
	}
	return out
}

// SaveChanged выгружает изменённые чанки, оставляя их в памяти.
// Чанк, изменённый во время PageOut, остаётся помеченным до следующего вызова.
func (v *PagedVolume) SaveChanged(ctx context.Context) int {
	chunks := v.changed()
	for _, c := range chunks {
		seen := c.Changes()
		v.pager.PageOut(ctx, c)
		c.ClearChangesIf(seen)
	}
	return len(chunks)
}

// AutoSave периодически сохраняет изменённые чанки до отмены ctx
func (v *PagedVolume) AutoSave(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := v.SaveChanged(ctx); n > 0 {
				v.logger.Debug("Автосохранение: %d чанков", n)
			}
		}
	}
}
