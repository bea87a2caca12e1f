package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/annel0/voxelworld/internal/config"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/storage"
)

// openedStorage - выбранное хранилище и ресурсы, которые нужно закрыть
type openedStorage struct {
	persister storage.Persister
	notifier  *storage.EraseNotifier
	closers   []io.Closer
}

func (s *openedStorage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			logging.Error("❌ Ошибка закрытия хранилища: %v", err)
		}
	}
}

// openStorage создаёт хранилище чанков по секции storage
func openStorage(cfg config.StorageConfig, nodeID string) (*openedStorage, error) {
	s := &openedStorage{}

	switch cfg.Backend {
	case config.BackendMemory:
		s.persister = storage.NewMemoryPersister()
		logging.Info("💾 Хранилище чанков: память")

	case config.BackendBadger, config.BackendRedis:
		cold, err := storage.NewBadgerPersister(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия Badger: %w", err)
		}
		s.closers = append(s.closers, cold)
		s.persister = cold
		logging.Info("💾 Хранилище чанков: Badger (%s)", filepath.Join(cfg.Path, "chunks"))

		if cfg.Backend == config.BackendRedis {
			hot, err := storage.NewRedisPersister(cfg.Redis)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
			}
			s.closers = append(s.closers, hot)
			s.persister = storage.NewTieredPersister(hot, cold)
			logging.Info("🔥 Горячий уровень: Redis %s (TTL %s)", cfg.Redis.URL, cfg.Redis.TTL)
		}

	default:
		return nil, fmt.Errorf("неизвестное хранилище %q", cfg.Backend)
	}

	if cfg.EraseNotifications {
		notifier, err := storage.NewEraseNotifier(cfg.NATS, nodeID)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.notifier = notifier
		s.closers = append(s.closers, notifier)
		s.persister = storage.WithEraseNotifier(s.persister, notifier)
	}
	return s, nil
}
