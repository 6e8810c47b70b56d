package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/store"
)

func TestLoadConfigDefaults(t *testing.T) {
	workdir(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Input != "inlet.in" || cfg.Output != "outlet.out" {
		t.Errorf("files = %q, %q", cfg.Input, cfg.Output)
	}
	if cfg.MaxNodes != list.MaxNodes {
		t.Errorf("MaxNodes = %d, want %d", cfg.MaxNodes, list.MaxNodes)
	}
	if cfg.Store.Backend != store.BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Store.Backend, store.BackendFile)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want none", cfg.Source)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := workdir(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
input = "lists.txt"
max_nodes = 500

[store]
backend = "redis"
prefix = "ci/"

[store.redis]
addr = "localhost:6379"
ttl = "10m"

[server]
addr = ":9090"

[neo4j]
uri = "neo4j://localhost:7687"
user = "neo4j"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.Input != "lists.txt" || cfg.Output != "outlet.out" {
		t.Errorf("files = %q, %q", cfg.Input, cfg.Output)
	}
	if cfg.MaxNodes != 500 {
		t.Errorf("MaxNodes = %d, want 500", cfg.MaxNodes)
	}
	if cfg.Store.Backend != store.BackendRedis || cfg.Store.Prefix != "ci/" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Redis.Addr != "localhost:6379" || cfg.Store.Redis.TTL != 10*time.Minute {
		t.Errorf("Redis = %+v", cfg.Store.Redis)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Neo4j.URI != "neo4j://localhost:7687" || cfg.Neo4j.User != "neo4j" {
		t.Errorf("Neo4j = %+v", cfg.Neo4j)
	}
}

func TestLoadConfigSearchPath(t *testing.T) {
	dir := workdir(t)
	xdg := filepath.Join(dir, "xdg", appName)
	if err := os.MkdirAll(xdg, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(xdg, "config.toml"), `output = "from-xdg.bin"`)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "from-xdg.bin" {
		t.Errorf("Output = %q, want the XDG config value", cfg.Output)
	}

	// The working directory wins over the user config.
	writeFile(t, configFileName, `output = "from-cwd.bin"`)
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "from-cwd.bin" {
		t.Errorf("Output = %q, want the working directory value", cfg.Output)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	workdir(t)
	writeFile(t, configFileName, "input = \"file.txt\"\n[store]\nbackend = \"memory\"\n")
	t.Setenv("RANDLIST_INPUT", "env.txt")
	t.Setenv("RANDLIST_MAX_NODES", "42")
	t.Setenv("RANDLIST_STORE_BACKEND", "s3")
	t.Setenv("RANDLIST_S3_BUCKET", "lists")
	t.Setenv("RANDLIST_NEO4J_PASSWORD", "secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "env.txt" {
		t.Errorf("Input = %q, want env override", cfg.Input)
	}
	if cfg.MaxNodes != 42 {
		t.Errorf("MaxNodes = %d, want 42", cfg.MaxNodes)
	}
	if cfg.Store.Backend != store.BackendS3 || cfg.Store.S3.Bucket != "lists" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Neo4j.Password != "secret" {
		t.Errorf("Neo4j.Password not applied")
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	workdir(t)
	writeFile(t, ".env", "RANDLIST_OUTPUT=dotenv.bin\n")
	t.Cleanup(func() { os.Unsetenv("RANDLIST_OUTPUT") })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "dotenv.bin" {
		t.Errorf("Output = %q, want value from .env", cfg.Output)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := workdir(t)

	if _, err := LoadConfig(filepath.Join(dir, "absent.toml")); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing file: err = %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "input = [unterminated")
	if _, err := LoadConfig(bad); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("invalid toml: err = %v", err)
	}

	t.Setenv("RANDLIST_MAX_NODES", "lots")
	if _, err := LoadConfig(""); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("invalid env: err = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"postgres", func(c *Config) { c.Store.Backend = store.BackendPostgres }, true},
		{"zero nodes", func(c *Config) { c.MaxNodes = 0 }, false},
		{"above hard limit", func(c *Config) { c.MaxNodes = list.MaxNodes + 1 }, false},
		{"no input", func(c *Config) { c.Input = "" }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "tape" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, valid = %v", err, tt.valid)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", appName); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err = configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}
}
