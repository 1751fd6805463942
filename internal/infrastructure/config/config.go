// Package config loads taskdesk settings from the environment layered over
// an optional TOML file. Environment wins over the file, the file wins over
// the defaults in the struct tags.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "TASKDESK_"

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
	SessionBackendMongo = "mongo"
)

type Config struct {
	APIURL          string        `env:"API_URL,          default=https://lf9server.onrender.com"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT,     default=15s"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL, default=30s"`
	DiagAddr        string        `env:"DIAG_ADDR"`
	WriteWorkers    int           `env:"WRITE_WORKERS,    default=4"`

	Log     LogConfig
	Session SessionConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL,  default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
	File   string `env:"LOG_FILE"`
}

type SessionConfig struct {
	Backend string `env:"SESSION_BACKEND, default=file"`
	File    string `env:"SESSION_FILE"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=taskdesk:"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DATABASE,   default=taskdesk"`
	Collection string `env:"MONGO_COLLECTION, default=sessions"`
	// Key is the document id; profiles sharing a database use distinct keys.
	Key string `env:"MONGO_KEY, default=default"`
}

// Load resolves the configuration. path names the TOML file; when empty the
// file is looked up in the user config dir and may be absent.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, env envconfig.Lookuper) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile()
	}

	fileValues, err := readFile(path)
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target: &cfg,
		Lookuper: envconfig.MultiLookuper(
			envconfig.PrefixLookuper(EnvPrefix, env),
			envconfig.MapLookuper(fileValues),
		),
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Session.File == "" {
		cfg.Session.File = filepath.Join(configDir(), "session.json")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("config: %sAPI_URL is empty", EnvPrefix)
	}
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendRedis, SessionBackendMongo:
	default:
		return fmt.Errorf("config: %sSESSION_BACKEND must be %q, %q or %q, got %q",
			EnvPrefix, SessionBackendFile, SessionBackendRedis, SessionBackendMongo, c.Session.Backend)
	}
	if c.WriteWorkers < 1 {
		return fmt.Errorf("config: %sWRITE_WORKERS must be at least 1", EnvPrefix)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("config: %sREFRESH_INTERVAL must not be negative", EnvPrefix)
	}
	return nil
}

// DefaultFile is the config file used when none is named.
func DefaultFile() string {
	return filepath.Join(configDir(), "config.toml")
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "taskdesk")
	}
	return ".taskdesk"
}

// readFile decodes the TOML file into variable names: top-level keys are
// upper-cased, keys of a table are prefixed with the table name, so
// [redis] addr = "..." becomes REDIS_ADDR.
func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}, err
	}
	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return map[string]string{}, err
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, doc map[string]any, out map[string]string) {
	for k, v := range doc {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
