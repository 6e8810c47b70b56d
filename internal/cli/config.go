package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/randlist/internal/server"
	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/export/neo4j"
	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/pipeline"
	"github.com/matzehuels/randlist/pkg/store"
)

// configFileName is looked up in the working directory before the user
// config directory.
const configFileName = appName + ".toml"

// envPrefix prefixes every environment override.
const envPrefix = "RANDLIST_"

// Config is the merged configuration: file, then environment, then flags.
type Config struct {
	Input    string        `toml:"input"`
	Output   string        `toml:"output"`
	MaxNodes int           `toml:"max_nodes"`
	Store    store.Config  `toml:"store"`
	Server   server.Config `toml:"server"`
	Neo4j    neo4j.Config  `toml:"neo4j"`

	// Source is the file the config was read from, if any.
	Source string `toml:"-"`
}

func defaultConfig() *Config {
	return &Config{
		Input:    pipeline.DefaultInput,
		Output:   pipeline.DefaultOutput,
		MaxNodes: list.MaxNodes,
		Store:    store.Config{Backend: store.BackendFile},
	}
}

// LoadConfig reads the config file at path, or the first default location
// that exists when path is empty, and applies RANDLIST_* environment
// variables. A .env file in the working directory is loaded first.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfig()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, errs.Wrap(errs.ErrCodeNotFound, err, "config file %s", path)
			}
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config file %s", path)
		}
		cfg.Source = path
	}

	// A missing .env is normal; system environment is used as-is.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfig returns the first existing default config file, or "".
func findConfig() string {
	candidates := []string{configFileName}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// configDir returns the config directory using XDG standard (~/.config/randlist/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"INPUT":             &c.Input,
		"OUTPUT":            &c.Output,
		"STORE_BACKEND":     &c.Store.Backend,
		"STORE_PREFIX":      &c.Store.Prefix,
		"STORE_DIR":         &c.Store.Dir,
		"REDIS_ADDR":        &c.Store.Redis.Addr,
		"REDIS_PASSWORD":    &c.Store.Redis.Password,
		"MONGO_URI":         &c.Store.Mongo.URI,
		"MONGO_DATABASE":    &c.Store.Mongo.Database,
		"S3_BUCKET":         &c.Store.S3.Bucket,
		"S3_REGION":         &c.Store.S3.Region,
		"S3_ENDPOINT":       &c.Store.S3.Endpoint,
		"S3_ACCESS_KEY":     &c.Store.S3.AccessKey,
		"S3_SECRET_KEY":     &c.Store.S3.SecretKey,
		"DATABASE_URL":      &c.Store.Postgres.URL,
		"SERVER_ADDR":       &c.Server.Addr,
		"SERVER_KEY_PREFIX": &c.Server.KeyPrefix,
		"NEO4J_URI":         &c.Neo4j.URI,
		"NEO4J_USER":        &c.Neo4j.User,
		"NEO4J_PASSWORD":    &c.Neo4j.Password,
		"NEO4J_DATABASE":    &c.Neo4j.Database,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_NODES": &c.MaxNodes,
		"REDIS_DB":  &c.Store.Redis.DB,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s%s", envPrefix, name)
		}
		*dst = n
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := errs.ValidateMaxNodes(c.MaxNodes, list.MaxNodes); err != nil {
		return err
	}
	if c.Input == "" || c.Output == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "input and output must be set")
	}
	for _, b := range store.Backends {
		if c.Store.Backend == b {
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q (want one of %v)", c.Store.Backend, store.Backends)
}
