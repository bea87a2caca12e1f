package voxel

// materialColors содержит индексы палитры, допустимые для каждого материала.
// Материал без индексов не может использоваться в биомах.
var materialColors = [MaxVoxelType][]uint8{
	Water:    {1, 2},
	Generic:  {3},
	Dirt:     {4, 5, 6},
	Grass:    {7, 8, 9, 10},
	Sand:     {11, 12},
	Rock:     {13, 14, 15},
	Clay:     {16, 17},
	Snow:     {18},
	Wood:     {19, 20},
	Leaf:     {21, 22, 23},
	LeafFir:  {24, 25},
	LeafPine: {26, 27},
	Cactus:   {28, 29},
	Flower:   {30, 31, 32},
	Cloud:    {33},
}

// MaterialIndices возвращает индексы палитры для материала (пустой срез - материал не отображается)
func MaterialIndices(t VoxelType) []uint8 {
	if t >= MaxVoxelType {
		return nil
	}
	return materialColors[t]
}

// CreateVoxel создаёт воксель материала t с цветом, выбранным по значению selector.
// Одинаковый selector всегда даёт одинаковый цвет.
func CreateVoxel(t VoxelType, selector uint32) Voxel {
	indices := MaterialIndices(t)
	if len(indices) == 0 {
		return Voxel{Material: t}
	}
	return Voxel{Material: t, Color: indices[selector%uint32(len(indices))]}
}
