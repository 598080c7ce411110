package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikmy/dynmodel/pkg/environment"
)

const testConfig = `
Environment: prod
Backend: mongo
API:
  http:
    addr: ":8080"
    read_timeout: 5s
  resources: [posts, people]
Mongo:
  url: mongodb://localhost:27017
  timeout: 3s
  database: app
Memory:
  snapshot: data.json
`

func writeConfig(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	require.Equal(t, environment.Production, cfg.Environment)
	require.Equal(t, BackendMongo, cfg.Backend)
	require.Equal(t, ":8080", cfg.API.HTTP.Addr)
	require.Equal(t, 5*time.Second, cfg.API.HTTP.ReadTimeout)
	require.Equal(t, []string{"posts", "people"}, cfg.API.Resources)
	require.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URL)
	require.Equal(t, "app", cfg.Mongo.Database)
	require.Equal(t, "data.json", cfg.Memory.Snapshot)
	require.Equal(t, time.Minute, cfg.Memory.Interval)
}

func TestLoadConfig_defaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "Environment: dev\n"))
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Backend)
}

func TestLoadConfig_envOverrides(t *testing.T) {
	t.Setenv(envBackend, "dynamodb")
	t.Setenv(envMongoURL, "mongodb://db:27017")

	cfg, err := loadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)
	require.Equal(t, BackendDynamoDB, cfg.Backend)
	require.Equal(t, "mongodb://db:27017", cfg.Mongo.URL)
}

func TestLoadConfig_errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "can't read")

	_, err = loadConfig(writeConfig(t, "Backend: [oops"))
	require.ErrorContains(t, err, "can't parse yaml")
}
