package biome

import (
	"errors"
	"fmt"

	"github.com/annel0/voxelworld/internal/noise"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/voxel"
	opensimplex "github.com/ojrac/opensimplex-go"
)

var (
	// ErrNoBiomes - после загрузки не осталось ни одного биома
	ErrNoBiomes = errors.New("не задано ни одного биома")
	// ErrInvalidElevation - нижняя граница высоты больше верхней
	ErrInvalidElevation = errors.New("некорректный диапазон высот биома")
	// ErrUnknownMaterial - у материала нет индексов палитры
	ErrUnknownMaterial = errors.New("у материала нет индексов палитры")
)

// Частоты климатических полей по умолчанию
const (
	DefaultHumidityFrequency    = 0.001
	DefaultTemperatureFrequency = 0.0001
)

// DefaultDefinition - биом по умолчанию, если ни один другой не подходит
var DefaultDefinition = Definition{
	Type:        voxel.Grass,
	YMin:        0,
	YMax:        voxel.MaxHeight,
	Humidity:    0.5,
	Temperature: 0.5,
}

// Manager - неизменяемая таблица биомов с климатическими полями.
// Безопасна для одновременного чтения из любого числа горутин.
type Manager struct {
	seed         int64
	biomes       []*Biome
	defaultBiome *Biome
	archetypes   *ArchetypeTable

	humidity     opensimplex.Noise
	temperature  opensimplex.Noise
	humidityF    float64
	temperatureF float64
}

// Seed возвращает зерно мира, на котором построены климатические поля
func (m *Manager) Seed() int64 {
	return m.seed
}

// WithSeed возвращает копию таблицы с климатическими полями и цветами
// для другого зерна. Сами биомы и зоны общие.
func (m *Manager) WithSeed(seed int64) *Manager {
	if seed == m.seed {
		return m
	}
	out := *m
	out.seed = seed
	out.humidity = opensimplex.New(seed + 1)
	out.temperature = opensimplex.New(seed + 2)
	return &out
}

// Biomes возвращает копию списка биомов в порядке добавления
func (m *Manager) Biomes() []*Biome {
	out := make([]*Biome, len(m.biomes))
	copy(out, m.biomes)
	return out
}

// Default возвращает биом по умолчанию
func (m *Manager) Default() *Biome {
	return m.defaultBiome
}

// Archetypes возвращает таблицу архетипов деревьев
func (m *Manager) Archetypes() *ArchetypeTable {
	return m.archetypes
}

// Humidity возвращает влажность столбца в [0, 1]
func (m *Manager) Humidity(x, z int) float64 {
	return noise.Norm(m.humidity.Eval2(float64(x)*m.humidityF, float64(z)*m.humidityF))
}

// Temperature возвращает температуру столбца в [0, 1]
func (m *Manager) Temperature(x, z int) float64 {
	return noise.Norm(m.temperature.Eval2(float64(x)*m.temperatureF, float64(z)*m.temperatureF))
}

// Biome выбирает биом для точки без кеширования. Для горячих циклов
// используйте Classifier.
func (m *Manager) Biome(pos vec.Vec3, underground bool) *Biome {
	return m.biomeFor(pos.Y, underground, m.Humidity(pos.X, pos.Z), m.Temperature(pos.X, pos.Z))
}

// biomeFor: ближайший по (влажность, температура) биом среди подходящих по высоте
// и признаку подземности. Равные расстояния разрешаются в пользу первого добавленного.
func (m *Manager) biomeFor(y int, underground bool, humidity, temperature float64) *Biome {
	var best *Biome
	bestDist := 0.0
	for _, b := range m.biomes {
		if b.Underground != underground || !b.ContainsHeight(y) {
			continue
		}
		dh := humidity - b.Humidity
		dt := temperature - b.Temperature
		d := dh*dh + dt*dt
		if best == nil || d < bestDist {
			best = b
			bestDist = d
		}
	}
	if best == nil {
		return m.defaultBiome
	}
	return best
}

// NewClassifier создаёт классификатор для одного рабочего потока
func (m *Manager) NewClassifier() *Classifier {
	return &Classifier{mgr: m}
}

// Builder собирает Manager и ZoneIndex из конфигурации.
// Не предназначен для одновременного использования.
type Builder struct {
	seed            int64
	defs            []Definition
	defaultDef      Definition
	explicitDefault bool
	zones           ZoneIndex
	humidityF       float64
	temperatureF    float64
	errs            []error
}

// NewBuilder создаёт построитель для заданного зерна мира
func NewBuilder(seed int64) *Builder {
	return &Builder{
		seed:         seed,
		defaultDef:   DefaultDefinition,
		humidityF:    DefaultHumidityFrequency,
		temperatureF: DefaultTemperatureFrequency,
	}
}

// SetClimateFrequencies переопределяет частоты полей влажности и температуры
func (b *Builder) SetClimateFrequencies(humidity, temperature float64) *Builder {
	if humidity > 0 {
		b.humidityF = humidity
	}
	if temperature > 0 {
		b.temperatureF = temperature
	}
	return b
}

func validateDefinition(def Definition) error {
	if def.YMin > def.YMax {
		return fmt.Errorf("%w: %d > %d", ErrInvalidElevation, def.YMin, def.YMax)
	}
	if len(voxel.MaterialIndices(def.Type)) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMaterial, def.Type)
	}
	return nil
}

// AddBiome добавляет биом. Ошибка запоминается и возвращается также из Build.
func (b *Builder) AddBiome(def Definition) error {
	if err := validateDefinition(def); err != nil {
		b.errs = append(b.errs, err)
		return err
	}
	b.defs = append(b.defs, def)
	return nil
}

// SetDefault задаёт биом по умолчанию
func (b *Builder) SetDefault(def Definition) error {
	if err := validateDefinition(def); err != nil {
		b.errs = append(b.errs, err)
		return err
	}
	b.defaultDef = def
	b.explicitDefault = true
	return nil
}

// AddCity добавляет город с центром pos и радиусом radius
func (b *Builder) AddCity(pos vec.Vec3, radius float64) error {
	return b.AddZone(pos, radius, ZoneCity)
}

// AddZone добавляет зону влияния
func (b *Builder) AddZone(pos vec.Vec3, radius float64, kind ZoneType) error {
	if kind < 0 || kind >= zoneTypeMax {
		err := fmt.Errorf("неизвестный тип зоны %d", kind)
		b.errs = append(b.errs, err)
		return err
	}
	if !validRadius(radius) {
		err := fmt.Errorf("некорректный радиус зоны %s: %v", kind, radius)
		b.errs = append(b.errs, err)
		return err
	}
	b.zones.zones[kind] = append(b.zones.zones[kind], Zone{Pos: pos, Radius: radius, Type: kind})
	return nil
}

// Build возвращает неизменяемую пару Manager/ZoneIndex.
// Если задан только биом по умолчанию, он же становится единственным биомом таблицы.
func (b *Builder) Build() (*Manager, *ZoneIndex, error) {
	if len(b.errs) > 0 {
		return nil, nil, errors.Join(b.errs...)
	}
	defs := b.defs
	if len(defs) == 0 {
		if !b.explicitDefault {
			return nil, nil, ErrNoBiomes
		}
		defs = []Definition{b.defaultDef}
	}

	archetypes := newArchetypeTable()
	intern := func(def Definition) *Biome {
		ids := make([]ArchetypeID, 0, len(def.TreeTypes))
		for _, name := range def.TreeTypes {
			ids = append(ids, archetypes.intern(name))
		}
		return newBiome(def, ids)
	}

	m := &Manager{
		seed:         b.seed,
		archetypes:   archetypes,
		humidity:     opensimplex.New(b.seed + 1),
		temperature:  opensimplex.New(b.seed + 2),
		humidityF:    b.humidityF,
		temperatureF: b.temperatureF,
	}
	for _, def := range defs {
		m.biomes = append(m.biomes, intern(def))
	}
	m.defaultBiome = intern(b.defaultDef)

	zones := &ZoneIndex{}
	for i := range b.zones.zones {
		zones.zones[i] = append([]Zone(nil), b.zones.zones[i]...)
	}
	return m, zones, nil
}
