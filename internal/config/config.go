package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	HTTPAddr string        `yaml:"http_addr"`
	GRPCAddr string        `yaml:"grpc_addr"`
	LogLevel string        `yaml:"log_level"`
	Storage  StorageConfig `yaml:"storage"`
	Seed     []SeedEntry   `yaml:"seed"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir"`
	RedisAddr string `yaml:"redis_addr"`
	MySQLDSN  string `yaml:"mysql_dsn"`
}

// SeedEntry provisions one inventory entry at startup when the inventory
// collection is empty.
type SeedEntry struct {
	ProductID string `yaml:"product_id"`
	Name      string `yaml:"name"`
	Quantity  int    `yaml:"quantity"`
}

func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
		LogLevel: "info",
		Storage: StorageConfig{
			Backend:   BackendFile,
			DataDir:   "data",
			RedisAddr: "localhost:6379",
			MySQLDSN:  "root:root@tcp(localhost:3306)/orderstock?parseTime=true",
		},
	}
}

// Load layers an optional YAML file and ORDERSTOCK_* env vars over the
// defaults. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getEnv("ORDERSTOCK_HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCAddr = getEnv("ORDERSTOCK_GRPC_ADDR", cfg.GRPCAddr)
	cfg.LogLevel = getEnv("ORDERSTOCK_LOG_LEVEL", cfg.LogLevel)
	cfg.Storage.Backend = getEnv("ORDERSTOCK_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.DataDir = getEnv("ORDERSTOCK_DATA_DIR", cfg.Storage.DataDir)
	cfg.Storage.RedisAddr = getEnv("ORDERSTOCK_REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.MySQLDSN = getEnv("ORDERSTOCK_MYSQL_DSN", cfg.Storage.MySQLDSN)

	switch cfg.Storage.Backend {
	case BackendFile, BackendRedis, BackendMySQL, BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
