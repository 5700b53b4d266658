package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/davicafu/hexatasks/internal/config"
	infraEvents "github.com/davicafu/hexatasks/internal/infra/events"
	taskApp "github.com/davicafu/hexatasks/internal/task/application"
	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	taskClickhouse "github.com/davicafu/hexatasks/internal/task/infra/outbound/analytics/clickhouse"
	taskMongo "github.com/davicafu/hexatasks/internal/task/infra/outbound/db/mongodb"
	taskPostgres "github.com/davicafu/hexatasks/internal/task/infra/outbound/db/postgre"
	taskRedis "github.com/davicafu/hexatasks/internal/task/infra/outbound/db/redisdb"
	taskSQLite "github.com/davicafu/hexatasks/internal/task/infra/outbound/db/sqlite"
	"github.com/davicafu/hexatasks/internal/task/infra/outbound/filesystem"
	"github.com/davicafu/hexatasks/internal/task/infra/outbound/memory"
	"github.com/davicafu/hexatasks/internal/task/infra/outbound/store"
	sharedBus "github.com/davicafu/hexatasks/shared/platform/bus"
	"github.com/davicafu/hexatasks/shared/platform/persistence"
	sharedUtils "github.com/davicafu/hexatasks/shared/utils"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

const (
	pingAttempts = 3
	pingDelay    = 500 * time.Millisecond
)

// app agrupa las piezas montadas a partir de la configuración.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	service   *taskApp.TaskService
	session   *taskApp.Session
	publisher sharedBus.EventPublisher
	bus       *infraEvents.InMemoryEventBus // solo con EVENT_BUS=memory
	activity  *taskClickhouse.ActivityLog   // nil si no hay ClickHouse
	lang      language.Tag
	closers   []func() error
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, lang: collationTag(cfg.CollationLang, log)}

	slot, err := a.openSlot(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var seed func() []*taskDomain.Task
	if cfg.Seed {
		seed = taskDomain.SeedTasks
	}
	taskStore := store.NewSlotTaskStore(slot, seed, log)

	if err := a.openAnalytics(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openPublisher(); err != nil {
		a.Close()
		return nil, err
	}

	a.service = taskApp.NewTaskService(taskStore, a.publisher, log)
	a.session = taskApp.NewSession(a.service, log)
	return a, nil
}

// openSlot elige el medio de persistencia según STORE_BACKEND.
func (a *app) openSlot(ctx context.Context) (persistence.Slot, error) {
	cfg := a.cfg
	switch cfg.StoreBackend {
	case "memory":
		a.log.Warn("⚠️ Usando almacenamiento en memoria: las tareas no sobreviven al proceso")
		return memory.NewSlot(), nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := ping(ctx, db.PingContext); err != nil {
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		if err := taskSQLite.InitSQLite(db); err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		a.log.Info("✅ SQLite listo", zap.String("path", cfg.SQLitePath))
		return taskSQLite.NewSlotRepoSQLite(db, cfg.SlotKey), nil

	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := ping(ctx, db.PingContext); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := taskPostgres.InitPostgresSlotSchema(db); err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		a.log.Info("✅ PostgreSQL listo")
		return taskPostgres.NewSlotRepoPostgres(db, cfg.SlotKey), nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		if err := ping(ctx, func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.log.Info("✅ Redis conectado", zap.String("addr", cfg.RedisAddr))
		return taskRedis.NewRedisSlot(rdb, cfg.SlotKey), nil

	case "mongodb":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		slot, err := taskMongo.NewSlotRepoMongoDB(ctx, client, cfg.MongoDB, cfg.SlotKey)
		if err != nil {
			return nil, err
		}
		a.log.Info("✅ MongoDB conectado", zap.String("db", cfg.MongoDB))
		return slot, nil

	default:
		a.log.Debug("Usando fichero JSON", zap.String("path", cfg.TasksFile))
		return filesystem.NewFileSlot(cfg.TasksFile), nil
	}
}

// openAnalytics conecta ClickHouse si está configurado. Para "clickhouse" como bus es obligatorio.
func (a *app) openAnalytics(ctx context.Context) error {
	if a.cfg.ClickHouseAddr == "" {
		return nil
	}
	db, err := taskClickhouse.Open(a.cfg.ClickHouseAddr, a.cfg.ClickHouseDB)
	if err != nil {
		if a.cfg.EventBus == "clickhouse" {
			return err
		}
		a.log.Warn("⚠️ ClickHouse no disponible, analítica desactivada", zap.Error(err))
		return nil
	}
	a.closers = append(a.closers, db.Close)

	activity := taskClickhouse.NewActivityLog(db)
	if err := activity.InitSchema(ctx); err != nil {
		return fmt.Errorf("init clickhouse schema: %w", err)
	}
	a.activity = activity
	a.log.Info("✅ ClickHouse conectado, analítica habilitada")
	return nil
}

func (a *app) openPublisher() error {
	switch a.cfg.EventBus {
	case "kafka":
		a.log.Info("🚀 Usando Kafka como bus de eventos", zap.Strings("brokers", a.cfg.KafkaBrokers))
		publisher := infraEvents.NewKafkaPublisher(infraEvents.NewKafkaWriter(a.cfg.KafkaBrokers, a.cfg.KafkaTopic), a.log)
		a.closers = append(a.closers, publisher.Close)
		a.publisher = publisher
	case "clickhouse":
		if a.activity == nil {
			return fmt.Errorf("clickhouse event bus requested but ClickHouse is not connected")
		}
		a.publisher = a.activity
	case "none":
		a.publisher = sharedBus.NopPublisher{}
	default:
		a.log.Debug("⚡️Usando bus de eventos en memoria (canales de Go)")
		a.bus = infraEvents.NewInMemoryEventBus(taskDomain.TaskTopic)
		a.closers = append(a.closers, func() error { a.bus.Close(); return nil })
		a.publisher = a.bus
	}
	return nil
}

// trendReader devuelve nil (interfaz nula) si no hay analítica.
func (a *app) trendReader() taskDomain.TaskTrendReader {
	if a.activity == nil {
		return nil
	}
	return a.activity
}

// Close libera los recursos en orden inverso de apertura.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Error closing resource", zap.Error(err))
		}
	}
	a.closers = nil
}

func ping(ctx context.Context, fn func(ctx context.Context) error) error {
	return sharedUtils.Retry(ctx, pingAttempts, pingDelay, fn)
}

func collationTag(lang string, log *zap.Logger) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		log.Warn("⚠️ COLLATION_LANG inválido, usando inglés", zap.String("lang", lang), zap.Error(err))
		return language.English
	}
	return tag
}
