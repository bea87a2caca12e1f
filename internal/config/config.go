package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/storage"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/annel0/voxelworld/internal/worldgen"
	"gopkg.in/yaml.v3"
)

// Поддерживаемые хранилища чанков
const (
	BackendBadger = "badger"
	BackendRedis  = "redis" // Redis поверх Badger
	BackendMemory = "memory"
)

// Config корневая структура конфигурации генератора.
type Config struct {
	World        WorldConfig   `yaml:"world"`
	Climate      ClimateConfig `yaml:"climate"`
	Biomes       []BiomeConfig `yaml:"biomes"`
	DefaultBiome *BiomeConfig  `yaml:"default_biome"`
	Cities       []CityConfig  `yaml:"cities"`
	Prefabs      PrefabConfig  `yaml:"prefabs"`
	Storage      StorageConfig `yaml:"storage"`
	Volume       VolumeConfig  `yaml:"volume"`
	Metrics      MetricsConfig `yaml:"metrics"`
	Log          LogConfig     `yaml:"log"`
}

// WorldConfig - зерно и параметры шумов
type WorldConfig struct {
	Seed                  int64 `yaml:"seed"`
	worldgen.WorldContext `yaml:",inline"`
}

type ClimateConfig struct {
	HumidityFrequency    float64 `yaml:"humidity_frequency"`
	TemperatureFrequency float64 `yaml:"temperature_frequency"`
}

// BiomeConfig описывает биом; материал задаётся именем (grass, sand, rock...)
type BiomeConfig struct {
	Material          string   `yaml:"material"`
	YMin              int      `yaml:"y_min"`
	YMax              int      `yaml:"y_max"`
	Humidity          float64  `yaml:"humidity"`
	Temperature       float64  `yaml:"temperature"`
	Underground       bool     `yaml:"underground"`
	TreeDistribution  int      `yaml:"tree_distribution"`
	CloudDistribution int      `yaml:"cloud_distribution"`
	PlantDistribution int      `yaml:"plant_distribution"`
	TreeTypes         []string `yaml:"tree_types"`
}

type CityConfig struct {
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Z      int     `yaml:"z"`
	Radius float64 `yaml:"radius"`
}

type PrefabConfig struct {
	Variants int `yaml:"variants"`
}

type StorageConfig struct {
	Backend string                 `yaml:"backend"`
	Path    string                 `yaml:"path"`
	Redis   storage.RedisConfig    `yaml:"redis"`
	NATS    storage.NotifierConfig `yaml:"nats"`
	// EraseNotifications включает рассылку и прием событий удаления через NATS
	EraseNotifications bool `yaml:"erase_notifications"`
}

type VolumeConfig struct {
	ChunkWidth  int `yaml:"chunk_width"`
	MaxResident int `yaml:"max_resident"`
	// Радиус предварительной генерации в чанках вокруг начала координат
	PregenRadius int `yaml:"pregen_radius"`
	Workers      int `yaml:"workers"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// GetPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetPort() int {
	return getIntWithEnvFallback(m.Port, "WORLDGEN_METRICS_PORT", 2112)
}

// ListenAddr возвращает адрес HTTP-сервера метрик
func (m *MetricsConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", m.Addr, m.GetPort())
}

// GetDir возвращает каталог логов: config -> env -> default
func (l *LogConfig) GetDir() string {
	if l.Dir != "" {
		return l.Dir
	}
	if dir := os.Getenv("WORLDGEN_LOG_DIR"); dir != "" {
		return dir
	}
	return "logs"
}

// ParseLevel возвращает уровень логирования консоли
func (l *LogConfig) ParseLevel() (logging.LogLevel, error) {
	return logging.ParseLevel(l.Level)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

// Default возвращает конфигурацию по умолчанию: один травяной биом, хранилище в памяти.
func Default() *Config {
	return &Config{
		World: WorldConfig{WorldContext: worldgen.DefaultWorldContext()},
		Climate: ClimateConfig{
			HumidityFrequency:    biome.DefaultHumidityFrequency,
			TemperatureFrequency: biome.DefaultTemperatureFrequency,
		},
		Prefabs: PrefabConfig{Variants: 4},
		Storage: StorageConfig{Backend: BackendMemory, Path: "data"},
		Volume:  VolumeConfig{ChunkWidth: 32, MaxResident: 256, PregenRadius: 2, Workers: 4},
		Log:     LogConfig{Level: "INFO"},
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берётся ENV WORLDGEN_CONFIG; без него возвращается Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("WORLDGEN_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность секций, не затрагивая биомы
func (c *Config) Validate() error {
	var errs []error
	if err := c.World.WorldContext.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Storage.Backend {
	case BackendBadger, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("неизвестное хранилище %q", c.Storage.Backend))
	}
	if c.Volume.ChunkWidth%2 != 0 {
		errs = append(errs, fmt.Errorf("ширина чанка должна быть четной: %d", c.Volume.ChunkWidth))
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ToDefinition разбирает имя материала и возвращает описание биома
func (b BiomeConfig) ToDefinition() (biome.Definition, error) {
	material, err := voxel.ParseVoxelType(b.Material)
	if err != nil {
		return biome.Definition{}, fmt.Errorf("%w: %q", biome.ErrUnknownMaterial, b.Material)
	}
	return biome.Definition{
		Type:              material,
		YMin:              b.YMin,
		YMax:              b.YMax,
		Humidity:          b.Humidity,
		Temperature:       b.Temperature,
		Underground:       b.Underground,
		TreeDistribution:  b.TreeDistribution,
		CloudDistribution: b.CloudDistribution,
		PlantDistribution: b.PlantDistribution,
		TreeTypes:         b.TreeTypes,
	}, nil
}

// BuildBiomes собирает таблицу биомов и индекс зон. Если не описано ни одного
// биома и не задан биом по умолчанию, используется biome.DefaultDefinition.
func (c *Config) BuildBiomes() (*biome.Manager, *biome.ZoneIndex, error) {
	b := biome.NewBuilder(c.World.Seed).
		SetClimateFrequencies(c.Climate.HumidityFrequency, c.Climate.TemperatureFrequency)

	var errs []error
	for i, bc := range c.Biomes {
		def, err := bc.ToDefinition()
		if err == nil {
			err = b.AddBiome(def)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("биом #%d: %w", i, err))
		}
	}

	switch {
	case c.DefaultBiome != nil:
		def, err := c.DefaultBiome.ToDefinition()
		if err == nil {
			err = b.SetDefault(def)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("биом по умолчанию: %w", err))
		}
	case len(c.Biomes) == 0:
		if err := b.SetDefault(biome.DefaultDefinition); err != nil {
			errs = append(errs, err)
		}
	}

	for _, city := range c.Cities {
		if err := b.AddCity(vec.Vec3{X: city.X, Y: city.Y, Z: city.Z}, city.Radius); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return b.Build()
}
