package configs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultUpstreamTimeout applies when HTTP_TIMEOUT_SECONDS is unset or
// unparseable.
const DefaultUpstreamTimeout = 300 * time.Second

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		Port     int    `koanf:"port"`
		LogFile  string `koanf:"log_file"`
		LogLevel string `koanf:"log_level"`
	} `koanf:"app"`

	Upstream struct {
		BaseURL string `koanf:"base_url"`
		// Raw value of HTTP_TIMEOUT_SECONDS before normalization.
		TimeoutSeconds string `koanf:"timeout_seconds"`
	} `koanf:"upstream"`

	API struct {
		// Fixed artificial delay applied to every API response.
		ResponseDelay time.Duration `koanf:"response_delay"`
	} `koanf:"api"`

	// Normalized once by Load; 0 means no deadline. Call sites never
	// re-interpret the sentinel strings.
	UpstreamTimeout time.Duration `koanf:"-"`
}

// Load reads configs/base.yaml (optional) and overlays the plain
// environment variables UPSTREAM_BASE, HTTP_TIMEOUT_SECONDS and PORT.
func Load(pathDir string) (Config, error) {
	k := koanf.New(".")

	// base file is optional; env-only deployments are the common case
	_ = k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser())

	if err := k.Load(env.Provider("", ".", mapEnvKey), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	if cfg.App.Name == "" {
		cfg.App.Name = "pos-x-kf-api"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 5115
	}
	if cfg.App.LogFile == "" {
		cfg.App.LogFile = "./logs/app.log"
	}
	if cfg.API.ResponseDelay == 0 {
		cfg.API.ResponseDelay = time.Second
	}
	cfg.UpstreamTimeout = ParseTimeout(cfg.Upstream.TimeoutSeconds)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mapEnvKey routes the handful of environment variables this service is
// configured with into koanf paths; everything else is ignored.
func mapEnvKey(s string) string {
	switch s {
	case "UPSTREAM_BASE":
		return "upstream.base_url"
	case "HTTP_TIMEOUT_SECONDS":
		return "upstream.timeout_seconds"
	case "PORT":
		return "app.port"
	}
	return ""
}

func (c Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url required (UPSTREAM_BASE)")
	}
	return nil
}

// ParseTimeout normalizes an HTTP_TIMEOUT_SECONDS value. "none",
// "infinite", "inf" and any value <= 0 disable the deadline (result 0).
// Any other numeric value is used verbatim, in seconds. Unset or
// unparseable values fall back to DefaultUpstreamTimeout.
func ParseTimeout(raw string) time.Duration {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return DefaultUpstreamTimeout
	case "none", "infinite", "inf":
		return 0
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return DefaultUpstreamTimeout
	}
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}
