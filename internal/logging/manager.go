package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Имена компонентов генератора, у каждого свой файл логов
const (
	ComponentWorldgen = "worldgen"
	ComponentStorage  = "storage"
	ComponentVolume   = "volume"
)

// LoggerManager хранит по одному логгеру на компонент. Новые логгеры
// получают текущий уровень консоли менеджера.
type LoggerManager struct {
	mu           sync.RWMutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// NewLoggerManager создаёт пустой менеджер с уровнем консоли INFO
func NewLoggerManager() *LoggerManager {
	return &LoggerManager{loggers: make(map[string]*Logger), consoleLevel: INFO}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая файл при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if ok {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер компонента %s: %w", component, err)
	}
	logger.SetLevels(lm.consoleLevel, TRACE)
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер компонента; если файл не открылся,
// пишет только в stdout
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}
	Warn("Не удалось создать логгер %s: %v", component, err)

	lm.mu.RLock()
	level := lm.consoleLevel
	lm.mu.RUnlock()
	fallback := NewWriterLogger(component, os.Stdout, nil)
	fallback.SetLevels(level, TRACE)
	return fallback
}

// SetConsoleLevel меняет уровень консоли у всех уже созданных логгеров и у будущих
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.consoleLevel = level
	for _, logger := range lm.loggers {
		logger.SetLevels(level, TRACE)
	}
}

// SetLogLevel задаёт уровни одному компоненту
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("логгер компонента %s не создан", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// ListComponents возвращает отсортированные имена компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// CloseAll закрывает файлы всех логгеров и очищает менеджер
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("закрытие логгера %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// GetComponentLogger возвращает логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldgenLogger() *Logger { return GetComponentLogger(ComponentWorldgen) }

func GetStorageLogger() *Logger { return GetComponentLogger(ComponentStorage) }

func GetVolumeLogger() *Logger { return GetComponentLogger(ComponentVolume) }
