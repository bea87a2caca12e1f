package voxel

import (
	"fmt"
	"strings"
)

// VoxelType определяет материал вокселя
type VoxelType uint8

const (
	Air VoxelType = iota
	Water
	Generic
	Dirt
	Grass
	Sand
	Rock
	Clay
	Snow
	Wood
	Leaf
	LeafFir
	LeafPine
	Cactus
	Flower
	Cloud

	MaxVoxelType // всегда последний: количество материалов
)

var voxelTypeNames = [MaxVoxelType]string{
	Air:      "air",
	Water:    "water",
	Generic:  "generic",
	Dirt:     "dirt",
	Grass:    "grass",
	Sand:     "sand",
	Rock:     "rock",
	Clay:     "clay",
	Snow:     "snow",
	Wood:     "wood",
	Leaf:     "leaf",
	LeafFir:  "leaf_fir",
	LeafPine: "leaf_pine",
	Cactus:   "cactus",
	Flower:   "flower",
	Cloud:    "cloud",
}

// String возвращает имя материала
func (t VoxelType) String() string {
	if t < MaxVoxelType {
		return voxelTypeNames[t]
	}
	return fmt.Sprintf("voxeltype(%d)", uint8(t))
}

// ParseVoxelType преобразует имя материала из конфигурации в VoxelType
func ParseVoxelType(name string) (VoxelType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range voxelTypeNames {
		if n == name {
			return VoxelType(i), nil
		}
	}
	return Air, fmt.Errorf("неизвестный материал %q", name)
}

// Voxel - минимальная единица мира: материал и индекс цвета в палитре
type Voxel struct {
	Material VoxelType
	Color    uint8
}

// IsAir возвращает true для пустого вокселя
func (v Voxel) IsAir() bool {
	return v.Material == Air
}

// IsAir проверяет, является ли материал воздухом
func IsAir(t VoxelType) bool {
	return t == Air
}

// IsWater проверяет, является ли материал водой
func IsWater(t VoxelType) bool {
	return t == Water
}

// IsGrass проверяет, относится ли материал к травяным
func IsGrass(t VoxelType) bool {
	return t == Grass
}

// IsSand проверяет, относится ли материал к песчаным
func IsSand(t VoxelType) bool {
	return t == Sand
}

// IsLeaf проверяет, является ли материал листвой
func IsLeaf(t VoxelType) bool {
	return t == Leaf || t == LeafFir || t == LeafPine
}

// IsTreeMaterial возвращает true для материалов, из которых состоят деревья.
// Такие воксели не считаются полом при поиске места для нового дерева.
func IsTreeMaterial(t VoxelType) bool {
	return IsLeaf(t) || t == Wood || t == Cactus
}
