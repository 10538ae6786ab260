// Package config loads vcwatch settings from an optional YAML file, applies
// defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Engine  EngineConfig  `koanf:"engine"`
	Notify  NotifyConfig  `koanf:"notify"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Feed    FeedConfig    `koanf:"feed"`
}

type StoreConfig struct {
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

type EngineConfig struct {
	LogCapacity int    `koanf:"log_capacity"`
	ResetPolicy string `koanf:"reset_policy"`
}

type NotifyConfig struct {
	ToastPerMinute int           `koanf:"toast_per_minute"`
	ToastTimeout   time.Duration `koanf:"toast_timeout"`
}

type LogConfig struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type FeedConfig struct {
	URL              string        `koanf:"url"`
	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
}

// Load reads path (skipped when empty), then fills defaults and applies
// VCWATCH_* environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// DefaultDBPath is ~/.vcwatch/vcwatch.db, or a relative path when the home
// directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vcwatch", "vcwatch.db")
	}
	return filepath.Join(home, ".vcwatch", "vcwatch.db")
}

// ResolvePath picks the config file: flag value, then VCWATCH_CONFIG, then
// ~/.vcwatch/config.yaml if it exists. It returns "" when there is none.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("VCWATCH_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".vcwatch", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "store.path", DefaultDBPath())
	setDefault(k, "store.namespace", "StatusVCMonitorContext")

	setDefault(k, "engine.log_capacity", 2000)
	setDefault(k, "engine.reset_policy", "session")

	setDefault(k, "notify.toast_per_minute", 60)
	setDefault(k, "notify.toast_timeout", 4*time.Second)

	setDefault(k, "log.level", "info")
	setDefault(k, "log.encoding", "console")

	setDefault(k, "metrics.addr", "")

	setDefault(k, "feed.url", "")
	setDefault(k, "feed.handshake_timeout", 10*time.Second)
}

func applyEnvOverrides(k *koanf.Koanf) {
	overrides := map[string]string{
		"VCWATCH_DB":           "store.path",
		"VCWATCH_NAMESPACE":    "store.namespace",
		"VCWATCH_LOG_LEVEL":    "log.level",
		"VCWATCH_RESET_POLICY": "engine.reset_policy",
		"VCWATCH_METRICS_ADDR": "metrics.addr",
		"VCWATCH_FEED_URL":     "feed.url",
	}
	for env, key := range overrides {
		if v := os.Getenv(env); v != "" {
			k.Set(key, v)
		}
	}
}

func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
