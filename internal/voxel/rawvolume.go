package voxel

// RawVolume - небольшой самостоятельный объём вокселей (префаб дерева, облака).
// Координаты локальные, регион может начинаться с отрицательных значений,
// чтобы точка (0,0,0) совпадала с основанием объекта.
type RawVolume struct {
	region Region
	voxels []Voxel
}

// NewRawVolume создаёт пустой объём
func NewRawVolume(region Region) *RawVolume {
	return &RawVolume{region: region, voxels: make([]Voxel, region.Volume())}
}

// Region возвращает регион объёма
func (v *RawVolume) Region() Region {
	return v.region
}

func (v *RawVolume) index(x, y, z int) int {
	r := v.region
	return ((y-r.Lower.Y)*r.Depth()+(z-r.Lower.Z))*r.Width() + (x - r.Lower.X)
}

// Voxel возвращает воксель; вне объёма - воздух
func (v *RawVolume) Voxel(x, y, z int) Voxel {
	if !v.region.ContainsPoint(x, y, z) {
		return Voxel{}
	}
	return v.voxels[v.index(x, y, z)]
}

// SetVoxel устанавливает воксель, точки вне объёма игнорируются
func (v *RawVolume) SetVoxel(x, y, z int, vox Voxel) {
	if !v.region.ContainsPoint(x, y, z) {
		return
	}
	v.voxels[v.index(x, y, z)] = vox
}

// VolumeReader - доступ на чтение к объёму префаба
type VolumeReader interface {
	Region() Region
	Voxel(x, y, z int) Voxel
}

// RotatedVolume поворачивает объём вокруг оси Y на Turns четвертей оборота.
// Оборачивает исходный объём без копирования.
type RotatedVolume struct {
	src   VolumeReader
	turns int
}

// RotateY создаёт обёртку поворота вокруг Y
func RotateY(src VolumeReader, turns int) RotatedVolume {
	turns %= 4
	if turns < 0 {
		turns += 4
	}
	return RotatedVolume{src: src, turns: turns}
}

// Region возвращает регион повернутого объёма
func (r RotatedVolume) Region() Region {
	s := r.src.Region()
	switch r.turns {
	case 1, 3:
		// ширина и глубина меняются местами
		x0, z0 := r.forward(s.Lower.X, s.Lower.Z)
		x1, z1 := r.forward(s.Upper.X, s.Upper.Z)
		return RegionFromBounds(min(x0, x1), s.Lower.Y, min(z0, z1), max(x0, x1), s.Upper.Y, max(z0, z1))
	case 2:
		return RegionFromBounds(-s.Upper.X, s.Lower.Y, -s.Upper.Z, -s.Lower.X, s.Upper.Y, -s.Lower.Z)
	default:
		return s
	}
}

// forward переводит исходные координаты в повернутые
func (r RotatedVolume) forward(x, z int) (int, int) {
	switch r.turns {
	case 1:
		return -z, x
	case 2:
		return -x, -z
	case 3:
		return z, -x
	default:
		return x, z
	}
}

// Voxel возвращает воксель в повернутых координатах
func (r RotatedVolume) Voxel(x, y, z int) Voxel {
	// обратный поворот
	switch r.turns {
	case 1:
		return r.src.Voxel(z, y, -x)
	case 2:
		return r.src.Voxel(-x, y, -z)
	case 3:
		return r.src.Voxel(-z, y, x)
	default:
		return r.src.Voxel(x, y, z)
	}
}
