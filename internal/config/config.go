package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StoreBackend   string   `yaml:"storeBackend"`
	TasksFile      string   `yaml:"tasksFile"`
	SQLitePath     string   `yaml:"sqlitePath"`
	DatabaseURL    string   `yaml:"databaseUrl"`
	RedisAddr      string   `yaml:"redisAddr"`
	MongoURI       string   `yaml:"mongoUri"`
	MongoDB        string   `yaml:"mongoDb"`
	SlotKey        string   `yaml:"slotKey"`
	Seed           bool     `yaml:"seed"`
	EventBus       string   `yaml:"eventBus"`
	KafkaBrokers   []string `yaml:"kafkaBrokers"`
	KafkaTopic     string   `yaml:"kafkaTopic"`
	ClickHouseAddr string   `yaml:"clickhouseAddr"`
	ClickHouseDB   string   `yaml:"clickhouseDb"`
	CollationLang  string   `yaml:"collationLang"`
	HTTPPort       string   `yaml:"httpPort"`
	LogLevel       string   `yaml:"logLevel"`
}

var (
	storeBackends = []string{"file", "memory", "sqlite", "postgres", "redis", "mongodb"}
	eventBuses    = []string{"memory", "kafka", "clickhouse", "none"}
)

// Defaults devuelve la configuración base, antes de fichero y entorno.
func Defaults() *Config {
	return &Config{
		StoreBackend:  "file",
		TasksFile:     "./hexatasks.json",
		SQLitePath:    "./hexatasks.db",
		MongoDB:       "hexatasks",
		SlotKey:       "tasks",
		Seed:          true,
		EventBus:      "memory",
		KafkaBrokers:  []string{"localhost:9092"},
		KafkaTopic:    "task-events",
		ClickHouseDB:  "default",
		CollationLang: "en",
		HTTPPort:      "8080",
		LogLevel:      "info",
	}
}

// LoadConfig aplica, por orden: valores por defecto, fichero YAML (HEXATASKS_CONFIG) y variables de entorno.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("HEXATASKS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.StoreBackend))
	cfg.TasksFile = getEnv("TASKS_FILE", cfg.TasksFile)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.SlotKey = getEnv("SLOT_KEY", cfg.SlotKey)
	cfg.EventBus = strings.ToLower(getEnv("EVENT_BUS", cfg.EventBus))
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.ClickHouseAddr = getEnv("CLICKHOUSE_ADDR", cfg.ClickHouseAddr)
	cfg.ClickHouseDB = getEnv("CLICKHOUSE_DB", cfg.ClickHouseDB)
	cfg.CollationLang = getEnv("COLLATION_LANG", cfg.CollationLang)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TASKS_SEED"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TASKS_SEED: %w", err)
		}
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate comprueba los valores enumerados y los requisitos de cada backend.
func (c *Config) Validate() error {
	if !contains(storeBackends, c.StoreBackend) {
		return fmt.Errorf("STORE_BACKEND must be one of %s (got %q)", strings.Join(storeBackends, ", "), c.StoreBackend)
	}
	if !contains(eventBuses, c.EventBus) {
		return fmt.Errorf("EVENT_BUS must be one of %s (got %q)", strings.Join(eventBuses, ", "), c.EventBus)
	}
	switch {
	case c.StoreBackend == "postgres" && c.DatabaseURL == "":
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	case c.StoreBackend == "redis" && c.RedisAddr == "":
		return fmt.Errorf("REDIS_ADDR is required for the redis backend")
	case c.StoreBackend == "mongodb" && c.MongoURI == "":
		return fmt.Errorf("MONGO_URI is required for the mongodb backend")
	case c.EventBus == "clickhouse" && c.ClickHouseAddr == "":
		return fmt.Errorf("CLICKHOUSE_ADDR is required for the clickhouse event bus")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
