package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a vfsd instance: where metadata and
// blobs live, how aggressively to tier, and the ambient logging/watch
// knobs. Zero-value fields are filled in by DefaultConfig before a config
// file or environment variables are applied on top.
type Config struct {
	Metadata MetadataConfig `yaml:"metadata"`
	Blob     BlobConfig     `yaml:"blob"`
	Cache    CacheConfig    `yaml:"cache"`
	Watch    WatchConfig    `yaml:"watch"`
	Mount    MountConfig    `yaml:"mount"`
	Log      LogConfig      `yaml:"log"`
}

// MetadataConfig points at the relational metadata store.
type MetadataConfig struct {
	DBPath            string        `yaml:"db_path"`
	TransactionTimeout time.Duration `yaml:"transaction_timeout"`
}

// BlobConfig configures tier placement thresholds and the warm/cold backend.
type BlobConfig struct {
	HotDir  string `yaml:"hot_dir"`
	HotMax  int64  `yaml:"hot_max"`  // bytes; above this, placement prefers warm
	WarmMax int64  `yaml:"warm_max"` // bytes; above this, placement prefers cold

	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	S3Region string `yaml:"s3_region"`
}

// CacheConfig sizes the pattern engine and entry caches shared across a
// running instance.
type CacheConfig struct {
	TTL              time.Duration `yaml:"ttl"`
	MaxEntries       int           `yaml:"max_entries"`
	PatternCacheSize int           `yaml:"pattern_cache_size"`
	DecisionCacheSize int          `yaml:"decision_cache_size"`
}

// WatchConfig tunes the debounce/batch/rate-limit knobs of the watch
// pipeline.
type WatchConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	BatchWindow    time.Duration `yaml:"batch_window"`
	RateLimit      float64       `yaml:"rate_limit"` // events/sec per subscription
	RateBurst      int           `yaml:"rate_burst"`
}

// MountConfig configures the optional real-OS FUSE mount.
type MountConfig struct {
	DefaultPath string `yaml:"default_path"`
	AllowOther  bool   `yaml:"allow_other"`
}

// LogConfig configures the zerolog-based structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns a Config with production-reasonable defaults:
// 1 MiB hot tier ceiling, 100 MiB warm tier ceiling, 50ms watch debounce,
// 10ms batch window, 16KiB stream high-water mark (owned by the handle
// package, not here).
func DefaultConfig() *Config {
	return &Config{
		Metadata: MetadataConfig{
			DBPath:             "vfs.db",
			TransactionTimeout: 30 * time.Second,
		},
		Blob: BlobConfig{
			HotDir:  "blobs/hot",
			HotMax:  1 << 20,   // 1 MiB
			WarmMax: 100 << 20, // 100 MiB
		},
		Cache: CacheConfig{
			TTL:               60 * time.Second,
			MaxEntries:        10000,
			PatternCacheSize:  1000,
			DecisionCacheSize: 10000,
		},
		Watch: WatchConfig{
			DebounceWindow: 50 * time.Millisecond,
			BatchWindow:    10 * time.Millisecond,
			RateLimit:      100,
			RateBurst:      200,
		},
		Mount: MountConfig{
			DefaultPath: "",
			AllowOther:  false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function, letting tests supply isolated environment values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if dbPath := getenv("VFS_DB_PATH"); dbPath != "" {
		cfg.Metadata.DBPath = dbPath
	}
	if bucket := getenv("VFS_S3_BUCKET"); bucket != "" {
		cfg.Blob.S3Bucket = bucket
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vfs", "config.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vfs", "config.yaml")
}
