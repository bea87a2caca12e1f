package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxelworld/internal/biome"
	"github.com/annel0/voxelworld/internal/config"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/observability"
	"github.com/annel0/voxelworld/internal/prefab"
	"github.com/annel0/voxelworld/internal/storage"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/volume"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/annel0/voxelworld/internal/worldgen"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $WORLDGEN_CONFIG)")
	seed := flag.Int64("seed", 0, "зерно мира (0 - из конфигурации)")
	radius := flag.Int("radius", -1, "радиус предварительной генерации в чанках (-1 - из конфигурации)")
	erase := flag.Bool("erase", false, "удалить сохраненные чанки области перед генерацией")
	serve := flag.Bool("serve", false, "после генерации продолжить работу и отдавать /metrics до сигнала")
	tracing := flag.Bool("otel", false, "экспортировать трассировку через OTLP")
	otelEndpoint := flag.String("otel-endpoint", "", "адрес OTLP коллектора (host:port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *radius >= 0 {
		cfg.Volume.PregenRadius = *radius
	}

	level, err := cfg.Log.ParseLevel()
	if err != nil {
		log.Fatalf("❌ Некорректный уровень логирования: %v", err)
	}
	if err := logging.InitDefaultLogger(cfg.Log.GetDir(), level); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	runID := uuid.NewString()
	logging.Info("🌍 Запуск генератора мира (run=%s, seed=%d)", runID, cfg.World.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *tracing {
		shutdownTelemetry, err := observability.InitTelemetry(ctx, observability.TelemetryConfig{
			ServiceName: "worldgen",
			Endpoint:    *otelEndpoint,
			InstanceID:  runID,
			Seed:        cfg.World.Seed,
		})
		if err != nil {
			logging.Error("❌ Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			defer func() {
				if err := shutdownTelemetry(context.Background()); err != nil {
					logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	if err := run(ctx, cfg, runID, *erase, *serve); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Генератор остановлен")
}

func run(ctx context.Context, cfg *config.Config, runID string, erase, serve bool) error {
	stats := observability.NewProcessStats()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	biomes, zones, err := cfg.BuildBiomes()
	if err != nil {
		return err
	}
	logging.Info("🌲 Биомов: %d, деревьев: %d архетипов, городов: %d",
		len(biomes.Biomes()), biomes.Archetypes().Len(), zones.Len(biome.ZoneCity))

	store, err := openStorage(cfg.Storage, runID)
	if err != nil {
		return err
	}
	defer store.Close()

	pager, err := worldgen.New(worldgen.Options{
		Context:   cfg.World.WorldContext,
		Seed:      cfg.World.Seed,
		Biomes:    biomes,
		Zones:     zones,
		Persister: store.persister,
		Trees:     prefab.NewLibrary(cfg.Prefabs.Variants),
		Metrics:   worldgen.NewMetrics(registry),
	})
	if err != nil {
		return err
	}

	vol, err := volume.New(pager, volume.Options{
		ChunkWidth:  cfg.Volume.ChunkWidth,
		MaxResident: cfg.Volume.MaxResident,
		Registerer:  registry,
	})
	if err != nil {
		return err
	}
	pager.Attach(vol)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := pager.Shutdown(shutdownCtx); err != nil {
			logging.Error("❌ %v", err)
		}
	}()

	if store.notifier != nil {
		err := store.notifier.Subscribe(ctx, func(msg storage.EraseMessage) error {
			n := vol.Drop(msg.Region)
			logging.Info("🧹 Узел %s удалил регион %s, сброшено чанков: %d", msg.NodeID, msg.Region, n)
			return nil
		})
		if err != nil {
			return err
		}
		exporter := observability.NewMetricsExporter(registry, store.notifier, time.Second)
		exporter.Start()
		defer exporter.Stop()
	}

	metricsServer := observability.StartMetricsServer(cfg.Metrics.ListenAddr(), registry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	autoSaveCtx, stopAutoSave := context.WithCancel(ctx)
	defer stopAutoSave()
	go vol.AutoSave(autoSaveCtx, time.Minute)

	regions := pregenRegions(vol, cfg.Volume.PregenRadius)
	if erase {
		for _, r := range regions {
			if err := pager.Erase(ctx, r); err != nil {
				return err
			}
		}
		logging.Info("🗑️  Удалено регионов: %d", len(regions))
	}

	start := time.Now()
	if err := pregenerate(ctx, vol, regions, cfg.Volume.Workers); err != nil {
		return err
	}
	logging.Info("✅ Сгенерировано чанков: %d за %s (в памяти: %d)", len(regions), time.Since(start).Round(time.Millisecond), vol.Len())
	logging.Info("   ⛰️  Высота рельефа в (0, 0): %d", pager.TerrainHeight(0, 0))
	for k, v := range stats.Report() {
		logging.Info("   📊 %s: %v", k, v)
	}

	if serve {
		logging.Info("Ожидание сигнала завершения...")
		<-ctx.Done()
		logging.Info("📡 Получен сигнал, завершение работы...")
	}
	return nil
}

// pregenRegions возвращает регионы чанков в квадрате радиуса radius вокруг начала координат
func pregenRegions(vol *volume.PagedVolume, radius int) []voxel.Region {
	var out []voxel.Region
	width := vol.ChunkRegion(vec.Vec3{}).Width()
	for cz := -radius; cz < radius; cz++ {
		for cx := -radius; cx < radius; cx++ {
			out = append(out, vol.ChunkRegion(vec.Vec3{X: cx * width, Z: cz * width}))
		}
	}
	return out
}

// pregenerate подкачивает регионы параллельно
func pregenerate(ctx context.Context, vol *volume.PagedVolume, regions []voxel.Region, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, r := range regions {
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := vol.Chunk(gctx, r.Lower)
			return err
		})
	}
	return g.Wait()
}
