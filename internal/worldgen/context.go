package worldgen

import (
	"errors"
	"fmt"
)

// WorldContext - параметры шумов рельефа. Загружается один раз и дальше не изменяется.
type WorldContext struct {
	LandscapeNoiseOctaves    int     `yaml:"landscape_octaves"`
	LandscapeNoiseLacunarity float64 `yaml:"landscape_lacunarity"`
	LandscapeNoiseFrequency  float64 `yaml:"landscape_frequency"`
	LandscapeNoiseGain       float64 `yaml:"landscape_gain"`

	MountainNoiseOctaves    int     `yaml:"mountain_octaves"`
	MountainNoiseLacunarity float64 `yaml:"mountain_lacunarity"`
	MountainNoiseFrequency  float64 `yaml:"mountain_frequency"`
	MountainNoiseGain       float64 `yaml:"mountain_gain"`

	CaveNoiseOctaves    int     `yaml:"cave_octaves"`
	CaveNoiseLacunarity float64 `yaml:"cave_lacunarity"`
	CaveNoiseFrequency  float64 `yaml:"cave_frequency"`
	CaveNoiseGain       float64 `yaml:"cave_gain"`

	// Ячейка твердая, если плотность (высота + пещерный шум) больше порога
	CaveDensityThreshold float64 `yaml:"cave_density_threshold"`

	// RidgedMountains заменяет горный fBm гребневым мультифракталом
	RidgedMountains bool    `yaml:"ridged_mountains"`
	RidgeOffset     float64 `yaml:"ridge_offset"`

	// Clouds включает расстановку облаков на высоте voxel.CloudHeight
	Clouds bool `yaml:"clouds"`
}

// DefaultWorldContext возвращает параметры мира по умолчанию
func DefaultWorldContext() WorldContext {
	return WorldContext{
		LandscapeNoiseOctaves:    1,
		LandscapeNoiseLacunarity: 0.1,
		LandscapeNoiseFrequency:  0.005,
		LandscapeNoiseGain:       0.2,

		MountainNoiseOctaves:    1,
		MountainNoiseLacunarity: 0.3,
		MountainNoiseFrequency:  0.00075,
		MountainNoiseGain:       0.5,

		CaveNoiseOctaves:    1,
		CaveNoiseLacunarity: 0.1,
		CaveNoiseFrequency:  0.05,
		CaveNoiseGain:       0.2,

		CaveDensityThreshold: 0.83,

		RidgeOffset: 1.0,
	}
}

// Reset возвращает параметры к значениям по умолчанию
func (c *WorldContext) Reset() {
	*c = DefaultWorldContext()
}

// Validate проверяет параметры на согласованность
func (c WorldContext) Validate() error {
	var errs []error
	check := func(name string, octaves int, frequency float64) {
		if octaves < 0 {
			errs = append(errs, fmt.Errorf("%s: отрицательное число октав %d", name, octaves))
		}
		if frequency < 0 {
			errs = append(errs, fmt.Errorf("%s: отрицательная частота %v", name, frequency))
		}
	}
	check("landscape", c.LandscapeNoiseOctaves, c.LandscapeNoiseFrequency)
	check("mountain", c.MountainNoiseOctaves, c.MountainNoiseFrequency)
	check("cave", c.CaveNoiseOctaves, c.CaveNoiseFrequency)
	return errors.Join(errs...)
}
