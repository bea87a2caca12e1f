package voxel

import (
	"sync"
)

// Chunk - плотный буфер вокселей одного региона.
// Чанком владеет контейнер кеша; генератор получает его только на время PageIn/PageOut.
type Chunk struct {
	region Region
	voxels []Voxel

	ChangeCounter int          // Счетчик изменений после загрузки
	Mu            sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт пустой (заполненный воздухом) чанк для региона
func NewChunk(region Region) *Chunk {
	return &Chunk{
		region: region,
		voxels: make([]Voxel, region.Volume()),
	}
}

// Region возвращает регион чанка
func (c *Chunk) Region() Region {
	return c.region
}

// index преобразует мировые координаты в индекс буфера; x меняется быстрее всего
func (c *Chunk) index(x, y, z int) int {
	lx := x - c.region.Lower.X
	ly := y - c.region.Lower.Y
	lz := z - c.region.Lower.Z
	return (ly*c.region.Depth()+lz)*c.region.Width() + lx
}

// Voxel возвращает воксель по мировым координатам; вне чанка - воздух
func (c *Chunk) Voxel(x, y, z int) Voxel {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	if !c.region.ContainsPoint(x, y, z) {
		return Voxel{}
	}
	return c.voxels[c.index(x, y, z)]
}

// SetVoxel устанавливает воксель по мировым координатам.
// Возвращает false, если точка лежит вне чанка.
func (c *Chunk) SetVoxel(x, y, z int, v Voxel) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if !c.region.ContainsPoint(x, y, z) {
		return false
	}
	c.voxels[c.index(x, y, z)] = v
	c.ChangeCounter++
	return true
}

// SetColumns записывает один и тот же столбец column в площадку width x depth,
// начиная с (x, minY, z). column[i] соответствует высоте minY+i.
// Части площадки вне чанка пропускаются.
func (c *Chunk) SetColumns(x, minY, z, width, depth int, column []Voxel) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	for dz := 0; dz < depth; dz++ {
		for dx := 0; dx < width; dx++ {
			nx, nz := x+dx, z+dz
			if !c.region.ContainsColumn(nx, nz) {
				continue
			}
			for i, v := range column {
				ny := minY + i
				if ny < c.region.Lower.Y || ny > c.region.Upper.Y {
					continue
				}
				c.voxels[c.index(nx, ny, nz)] = v
			}
		}
	}
}

// Voxels возвращает копию буфера вокселей
func (c *Chunk) Voxels() []Voxel {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	out := make([]Voxel, len(c.voxels))
	copy(out, c.voxels)
	return out
}

// LoadVoxels заменяет содержимое чанка.
// Возвращает false, если размер данных не совпадает с объёмом региона.
func (c *Chunk) LoadVoxels(data []Voxel) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if len(data) != len(c.voxels) {
		return false
	}
	copy(c.voxels, data)
	c.ChangeCounter = 0
	return true
}

// HasChanges возвращает true, если чанк изменялся после загрузки
func (c *Chunk) HasChanges() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	return c.ChangeCounter > 0
}

// Changes возвращает текущее значение счетчика изменений
func (c *Chunk) Changes() int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	return c.ChangeCounter
}

// ClearChangesIf сбрасывает счетчик, только если он равен seen.
// Возвращает false, если чанк изменился после снятия seen.
func (c *Chunk) ClearChangesIf(seen int) bool {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if c.ChangeCounter != seen {
		return false
	}
	c.ChangeCounter = 0
	return true
}

// ClearChanges сбрасывает счетчик изменений
func (c *Chunk) ClearChanges() {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	c.ChangeCounter = 0
}
