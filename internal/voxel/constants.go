package voxel

// Высоты мира в вокселях. Колонка чанка всегда покрывает диапазон [0, MaxHeight].
const (
	MaxHeight         = 255                    // Верхняя граница мира
	MaxTerrainHeight  = 128                    // Максимальная высота рельефа
	MaxMountainHeight = MaxTerrainHeight + 32  // Выше этой высоты могут появляться облака
	MaxWaterHeight    = 16                     // Уровень воды: пустоты ниже заполняются водой
	CloudHeight       = MaxMountainHeight + 40 // Высота, на которой ставятся облака
)
