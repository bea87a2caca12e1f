package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/go-redis/redis/v8"
)

// RedisConfig - настройки Redis-хранилища чанков
type RedisConfig struct {
	URL            string        `yaml:"url" env:"WORLDGEN_REDIS_URL"`
	Password       string        `yaml:"password" env:"WORLDGEN_REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"WORLDGEN_REDIS_DB"`
	TTL            time.Duration `yaml:"ttl" env:"WORLDGEN_REDIS_TTL"`
	MaxConnections int           `yaml:"max_connections"`
	PoolTimeout    time.Duration `yaml:"pool_timeout"`
}

func (c *RedisConfig) applyDefaults() {
	if c.URL == "" {
		c.URL = "localhost:6379"
	}
	if c.TTL == 0 {
		c.TTL = 30 * time.Minute
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = 10
	}
	if c.PoolTimeout == 0 {
		c.PoolTimeout = 30 * time.Second
	}
}

// RedisPersister хранит сжатые чанки в Redis с ограниченным временем жизни.
// Используется как горячий уровень перед BadgerPersister.
type RedisPersister struct {
	client *redis.Client
	config RedisConfig
}

// NewRedisPersister подключается к Redis и проверяет соединение
func NewRedisPersister(config RedisConfig) (*RedisPersister, error) {
	config.applyDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.URL,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.MaxConnections,
		PoolTimeout:  config.PoolTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	// Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	logging.Info("Redis хранилище чанков подключено: %s (TTL %v)", config.URL, config.TTL)
	return &RedisPersister{client: rdb, config: config}, nil
}

func (r *RedisPersister) Load(ctx context.Context, region voxel.Region, seed int64) ([]voxel.Voxel, bool, error) {
	data, err := r.client.Get(ctx, ChunkKey(region, seed)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	voxels, err := DecodeVoxels(data)
	if err != nil {
		return nil, false, err
	}
	return voxels, true, nil
}

func (r *RedisPersister) Save(ctx context.Context, chunk *voxel.Chunk, seed int64) error {
	data, err := EncodeVoxels(chunk.Voxels())
	if err != nil {
		return fmt.Errorf("ошибка сериализации чанка: %w", err)
	}
	if err := r.client.Set(ctx, ChunkKey(chunk.Region(), seed), data, r.config.TTL).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

func (r *RedisPersister) Erase(ctx context.Context, region voxel.Region, seed int64) error {
	if err := r.client.Del(ctx, ChunkKey(region, seed)).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение
func (r *RedisPersister) Close() error {
	return r.client.Close()
}
