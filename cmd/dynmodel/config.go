package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nikmy/dynmodel/internal/api"
	"github.com/nikmy/dynmodel/internal/storage/dynamodb"
	"github.com/nikmy/dynmodel/internal/storage/mongodb"
	"github.com/nikmy/dynmodel/pkg/environment"
	"github.com/nikmy/dynmodel/pkg/errors"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendMongo    Backend = "mongo"
	BackendDynamoDB Backend = "dynamodb"
)

type Config struct {
	Environment environment.Env `yaml:"Environment"`
	Backend     Backend         `yaml:"Backend"`

	API      api.Config      `yaml:"API"`
	Mongo    mongodb.Config  `yaml:"Mongo"`
	DynamoDB dynamodb.Config `yaml:"DynamoDB"`
	Memory   MemoryConfig    `yaml:"Memory"`
}

type MemoryConfig struct {
	// Snapshot is a JSON file the data is restored from and saved to;
	// empty keeps everything in process memory only.
	Snapshot string        `yaml:"snapshot"`
	Interval time.Duration `yaml:"interval"`
}

const (
	envBackend  = "DYNMODEL_BACKEND"
	envMongoURL = "DYNMODEL_MONGO_URL"
)

func loadConfig(file string) (*Config, error) {
	path, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.WrapFail(err, "build path to config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFailf(err, "read %q", file)
	}

	cfg := Config{
		Backend: BackendMemory,
		Memory:  MemoryConfig{Interval: time.Minute},
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, errors.WrapFail(err, "parse yaml")
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.WrapFail(err, "load .env")
	}
	applyEnv(&cfg)

	if cfg.Memory.Interval <= 0 {
		cfg.Memory.Interval = time.Minute
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if backend, ok := os.LookupEnv(envBackend); ok {
		cfg.Backend = Backend(backend)
	}
	if url, ok := os.LookupEnv(envMongoURL); ok {
		cfg.Mongo.URL = url
	}
}
