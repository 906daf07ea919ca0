package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recera/vexc/internal/cache"
	"github.com/recera/vexc/pkg/compiler"
	"github.com/recera/vexc/pkg/compiler/codegen"
	"github.com/recera/vexc/pkg/compiler/parser"
)

// FileName is the project configuration file looked up by every command
const FileName = "vexc.yaml"

// Config represents the vexc.yaml configuration
type Config struct {
	// Files or directories scanned for templates
	Include []string `yaml:"include,omitempty"`

	// Template file extension
	Extension string `yaml:"extension,omitempty"`

	// Output directory; empty writes next to each template
	OutDir string `yaml:"outDir,omitempty"`

	// Compiler configuration
	Compiler *CompilerConfig `yaml:"compiler,omitempty"`

	// Compile cache configuration
	Cache *CacheConfig `yaml:"cache,omitempty"`

	// Watch mode configuration
	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// CompilerConfig controls generated code
type CompilerConfig struct {
	// "function" or "module"
	Mode string `yaml:"mode,omitempty"`

	// Module helpers are imported from in module mode
	Runtime string `yaml:"runtime,omitempty"`

	// Global helpers are read from in function mode
	RuntimeGlobal string `yaml:"runtimeGlobal,omitempty"`

	// "condense" or "preserve"
	Whitespace string `yaml:"whitespace,omitempty"`

	// Whether static subtrees are hoisted out of render
	HoistStatic *bool `yaml:"hoistStatic,omitempty"`
}

// CacheConfig contains compile cache configuration
type CacheConfig struct {
	// Whether compiled output is cached
	Enabled *bool `yaml:"enabled,omitempty"`

	// Cache directory; empty uses the user cache directory
	Dir string `yaml:"dir,omitempty"`

	// Maximum cache size in megabytes
	MaxSizeMB int64 `yaml:"maxSizeMB,omitempty"`

	// Maximum entry age, e.g. "168h"
	MaxAge string `yaml:"maxAge,omitempty"`

	// "lru", "lfu" or "fifo"
	Strategy string `yaml:"strategy,omitempty"`
}

// WatchConfig contains watch mode configuration
type WatchConfig struct {
	// Quiet period before a batch of changes is compiled, e.g. "100ms"
	Debounce string `yaml:"debounce,omitempty"`

	// Event server host
	Host string `yaml:"host,omitempty"`

	// Event server port
	Port int `yaml:"port,omitempty"`
}

// Load loads configuration from vexc.yaml in projectPath
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	// Return default config if no file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &config, nil
}

// Save saves configuration to vexc.yaml in projectPath
func Save(config *Config, projectPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	hoist := true
	cacheEnabled := true
	return &Config{
		Include:   []string{"."},
		Extension: ".vue",
		Compiler: &CompilerConfig{
			Mode:          "function",
			Runtime:       "chibivue",
			RuntimeGlobal: "ChibiVue",
			Whitespace:    "condense",
			HoistStatic:   &hoist,
		},
		Cache: &CacheConfig{
			Enabled:   &cacheEnabled,
			MaxSizeMB: 64,
			MaxAge:    "168h",
			Strategy:  "lru",
		},
		Watch: &WatchConfig{
			Debounce: "100ms",
			Host:     "localhost",
			Port:     35729,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if len(config.Include) == 0 {
		config.Include = defaults.Include
	}
	if config.Extension == "" {
		config.Extension = defaults.Extension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}

	if config.Compiler == nil {
		config.Compiler = defaults.Compiler
	} else {
		if config.Compiler.Mode == "" {
			config.Compiler.Mode = defaults.Compiler.Mode
		}
		if config.Compiler.Runtime == "" {
			config.Compiler.Runtime = defaults.Compiler.Runtime
		}
		if config.Compiler.RuntimeGlobal == "" {
			config.Compiler.RuntimeGlobal = defaults.Compiler.RuntimeGlobal
		}
		if config.Compiler.Whitespace == "" {
			config.Compiler.Whitespace = defaults.Compiler.Whitespace
		}
		if config.Compiler.HoistStatic == nil {
			config.Compiler.HoistStatic = defaults.Compiler.HoistStatic
		}
	}

	if config.Cache == nil {
		config.Cache = defaults.Cache
	} else {
		if config.Cache.Enabled == nil {
			config.Cache.Enabled = defaults.Cache.Enabled
		}
		if config.Cache.MaxSizeMB == 0 {
			config.Cache.MaxSizeMB = defaults.Cache.MaxSizeMB
		}
		if config.Cache.MaxAge == "" {
			config.Cache.MaxAge = defaults.Cache.MaxAge
		}
		if config.Cache.Strategy == "" {
			config.Cache.Strategy = defaults.Cache.Strategy
		}
	}

	if config.Watch == nil {
		config.Watch = defaults.Watch
	} else {
		if config.Watch.Debounce == "" {
			config.Watch.Debounce = defaults.Watch.Debounce
		}
		if config.Watch.Host == "" {
			config.Watch.Host = defaults.Watch.Host
		}
		if config.Watch.Port == 0 {
			config.Watch.Port = defaults.Watch.Port
		}
	}
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if _, err := parseMode(c.Compiler.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseWhitespace(c.Compiler.Whitespace); err != nil {
		errs = append(errs, err)
	}
	if _, err := cache.ParseStrategy(c.Cache.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("cache.strategy: %w", err))
	}
	if _, err := time.ParseDuration(c.Cache.MaxAge); err != nil {
		errs = append(errs, fmt.Errorf("cache.maxAge: %w", err))
	}
	if c.Cache.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("cache.maxSizeMB must not be negative"))
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must be positive"))
	}
	if c.Watch.Port < 1 || c.Watch.Port > 65535 {
		errs = append(errs, fmt.Errorf("watch.port %d out of range", c.Watch.Port))
	}
	return errors.Join(errs...)
}

// CompilerOptions converts the compiler section into compile options
func (c *Config) CompilerOptions() (compiler.Options, error) {
	mode, err := parseMode(c.Compiler.Mode)
	if err != nil {
		return compiler.Options{}, err
	}
	whitespace, err := parseWhitespace(c.Compiler.Whitespace)
	if err != nil {
		return compiler.Options{}, err
	}

	opts := compiler.DefaultOptions()
	opts.Parser.Whitespace = whitespace
	opts.Transform.HoistStatic = c.Compiler.HoistStatic == nil || *c.Compiler.HoistStatic
	opts.Codegen.Mode = mode
	opts.Codegen.RuntimeModule = c.Compiler.Runtime
	opts.Codegen.RuntimeGlobal = c.Compiler.RuntimeGlobal
	return opts, nil
}

// Fingerprint identifies every setting that changes generated code
func (c *Config) Fingerprint() string {
	data, _ := yaml.Marshal(c.Compiler)
	return string(data)
}

// CacheEnabled reports whether compiled output should be cached
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// CacheConfig converts the cache section into cache settings
func (c *Config) CacheConfig() (cache.Config, error) {
	strategy, err := cache.ParseStrategy(c.Cache.Strategy)
	if err != nil {
		return cache.Config{}, err
	}
	maxAge, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return cache.Config{}, err
	}

	cfg := cache.DefaultConfig()
	if c.Cache.Dir != "" {
		cfg.Dir = c.Cache.Dir
	}
	cfg.Version = compiler.Version
	cfg.MaxSize = c.Cache.MaxSizeMB << 20
	cfg.MaxAge = maxAge
	cfg.Strategy = strategy
	return cfg, nil
}

// DebounceInterval returns the parsed watch debounce
func (c *Config) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

func parseMode(s string) (codegen.Mode, error) {
	switch s {
	case "function":
		return codegen.ModeFunction, nil
	case "module":
		return codegen.ModeModule, nil
	default:
		return 0, fmt.Errorf("compiler.mode must be function or module, got %q", s)
	}
}

func parseWhitespace(s string) (parser.Whitespace, error) {
	switch s {
	case "condense":
		return parser.WhitespaceCondense, nil
	case "preserve":
		return parser.WhitespacePreserve, nil
	default:
		return 0, fmt.Errorf("compiler.whitespace must be condense or preserve, got %q", s)
	}
}
