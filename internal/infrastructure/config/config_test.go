package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, "")
	cfg, err := load(context.Background(), path, envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, "https://lf9server.onrender.com", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, SessionBackendFile, cfg.Session.Backend)
	assert.NotEmpty(t, cfg.Session.File)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "taskdesk:", cfg.Redis.Prefix)
	assert.Equal(t, 4, cfg.WriteWorkers)
	assert.Equal(t, "sessions", cfg.Mongo.Collection)
	assert.Equal(t, "default", cfg.Mongo.Key)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
api_url = "http://localhost:8080"
refresh_interval = "1m"

[session]
backend = "redis"

[redis]
addr = "cache:6379"
db = 2
`)
	cfg, err := load(context.Background(), path, envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, `api_url = "http://from-file"`)
	env := envconfig.MapLookuper(map[string]string{
		"TASKDESK_API_URL":   "http://from-env",
		"TASKDESK_LOG_LEVEL": "debug",
	})

	cfg, err := load(context.Background(), path, env)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env", cfg.APIURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_UnprefixedEnvIgnored(t *testing.T) {
	path := writeFile(t, "")
	env := envconfig.MapLookuper(map[string]string{"API_URL": "http://nope"})

	cfg, err := load(context.Background(), path, env)
	require.NoError(t, err)
	assert.Equal(t, "https://lf9server.onrender.com", cfg.APIURL)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := load(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), envconfig.MapLookuper(nil))
	assert.Error(t, err)
}

func TestLoad_BadTOML(t *testing.T) {
	path := writeFile(t, "api_url = ")
	_, err := load(context.Background(), path, envconfig.MapLookuper(nil))
	assert.Error(t, err)
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := writeFile(t, "")
	env := envconfig.MapLookuper(map[string]string{"TASKDESK_SESSION_BACKEND": "sqlite"})

	_, err := load(context.Background(), path, env)
	assert.ErrorContains(t, err, "SESSION_BACKEND")
}

func TestLoad_ZeroWriteWorkers(t *testing.T) {
	path := writeFile(t, "write_workers = 0")
	_, err := load(context.Background(), path, envconfig.MapLookuper(nil))
	assert.ErrorContains(t, err, "WRITE_WORKERS")
}

func TestLoad_MongoBackend(t *testing.T) {
	path := writeFile(t, `
[session]
backend = "mongo"

[mongo]
uri = "mongodb://db:27017"
key = "kiosk-3"
`)
	cfg, err := load(context.Background(), path, envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, SessionBackendMongo, cfg.Session.Backend)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "taskdesk", cfg.Mongo.Database)
	assert.Equal(t, "kiosk-3", cfg.Mongo.Key)
}

func TestFlatten(t *testing.T) {
	out := map[string]string{}
	flatten("", map[string]any{
		"a":     "x",
		"tbl":   map[string]any{"b": int64(3), "c": true},
		"items": []any{"p", "q"},
	}, out)

	assert.Equal(t, map[string]string{
		"A":     "x",
		"TBL_B": "3",
		"TBL_C": "true",
		"ITEMS": "p,q",
	}, out)
}
