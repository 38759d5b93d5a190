// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nhancris/KPresent/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete kpresent configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Generation GenerationConfig `toml:"generation" json:"generation"`
	Remote     RemoteConfig     `toml:"remote" json:"remote"`
	Storage    StorageConfig    `toml:"storage" json:"storage"`
	Server     ServerConfig     `toml:"server" json:"server"`
	Theme      ThemeConfig      `toml:"theme" json:"theme"`
	Log        LogConfig        `toml:"log" json:"log"`
}

// GenerationConfig controls deck assembly.
type GenerationConfig struct {
	// DefaultMode is "normal" or "advanced".
	DefaultMode string `toml:"default_mode" json:"default_mode"`
	// DefaultSlides is the slide count used when none is requested.
	DefaultSlides int `toml:"default_slides" json:"default_slides"`
	// Seed fixes theme selection. Zero seeds from the clock.
	Seed int64 `toml:"seed" json:"seed"`
	// Concurrency is the number of slides generated in parallel. 1 is sequential.
	Concurrency int `toml:"concurrency" json:"concurrency"`
	// Pacing enables the simulated per-slide latency.
	Pacing bool `toml:"pacing" json:"pacing"`
	// Measurer selects the text width estimator: "heuristic" or "runewidth".
	Measurer string `toml:"measurer" json:"measurer"`
}

// RemoteConfig configures the generative provider.
type RemoteConfig struct {
	// Provider is "gemini", "openrouter" or "none".
	Provider string `toml:"provider" json:"provider"`
	// APIKey enables remote generation. Empty means offline.
	APIKey  string `toml:"api_key" json:"api_key"`
	BaseURL string `toml:"base_url" json:"base_url"`

	NormalModel   string `toml:"normal_model" json:"normal_model"`
	AdvancedModel string `toml:"advanced_model" json:"advanced_model"`

	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of remote attempts per slide. Only 1 is
	// accepted; a failed slide falls back to local synthesis.
	MaxRetries      int `toml:"max_retries" json:"max_retries"`
	RatePerMinute   int `toml:"rate_per_minute" json:"rate_per_minute"`
	BreakerFailures int `toml:"breaker_failures" json:"breaker_failures"`
}

// Timeout returns the request timeout as a duration.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// StorageConfig selects the presentation store.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend          string `toml:"backend" json:"backend"`
	Dir              string `toml:"dir" json:"dir"`
	SQLitePath       string `toml:"sqlite_path" json:"sqlite_path"`
	MaxPresentations int    `toml:"max_presentations" json:"max_presentations"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// AuthToken enables bearer authentication when set.
	AuthToken   string   `toml:"auth_token" json:"auth_token"`
	CORSOrigins []string `toml:"cors_origins" json:"cors_origins"`
	// RateLimit is requests per minute per client. Zero disables it.
	RateLimit int `toml:"rate_limit" json:"rate_limit"`
}

// ThemeConfig configures custom themes and the default theme.
type ThemeConfig struct {
	// CustomDir holds YAML theme files.
	CustomDir string `toml:"custom_dir" json:"custom_dir"`
	// Default is a theme id. Empty picks a random theme per deck.
	Default string `toml:"default" json:"default"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default model names per generation mode.
const (
	DefaultNormalModel   = "gemini-2.5-flash-preview-05-20"
	DefaultAdvancedModel = "gemini-2.5-pro-preview-06-05"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Generation: GenerationConfig{
			DefaultMode:   "normal",
			DefaultSlides: 5,
			Seed:          0,
			Concurrency:   1,
			Pacing:        false,
			Measurer:      "heuristic",
		},

		Remote: RemoteConfig{
			Provider:        "gemini",
			NormalModel:     DefaultNormalModel,
			AdvancedModel:   DefaultAdvancedModel,
			TimeoutSecs:     60,
			MaxRetries:      1,
			RatePerMinute:   60,
			BreakerFailures: 5,
		},

		Storage: StorageConfig{
			Backend:          "file",
			Dir:              "~/.kpresent/presentations",
			SQLitePath:       "~/.kpresent/presentations.db",
			MaxPresentations: 100,
		},

		Server: ServerConfig{
			Addr:      "127.0.0.1:8787",
			RateLimit: 120,
		},

		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the kpresent configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".kpresent"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ensureSecurePermissions tightens config files to 0600 since they may hold
// API keys and auth tokens.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default location.
// Tries TOML first, then JSON, and falls back to defaults. Environment
// overrides are applied last. A file that fails to decode is reported
// alongside the defaults so callers can warn and continue.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			fallback, ferr := finish(Default())
			if ferr != nil {
				return nil, ferr
			}
			return fallback, err
		}
		return cfg, nil
	}
	return finish(Default())
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation. Files ending in .json are decoded as JSON, anything else as
// TOML. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# kpresent configuration file\n")
	sb.WriteString("# Generated by kpresent - edit with care\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	if err := util.AtomicWriteJSON(path, cfg, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Allowed values for enumerated settings.
var (
	validModes     = []string{"normal", "advanced"}
	validMeasurers = []string{"heuristic", "runewidth"}
	validProviders = []string{"gemini", "openrouter", "none"}
	validBackends  = []string{"file", "sqlite"}
	validLevels    = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"console", "json"}
)

// Limits for numeric settings.
const (
	MaxSlides      = 50
	MaxConcurrency = 16
	MaxRetries     = 1
)

func oneOf(value string, allowed []string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns any errors as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Generation
	if !oneOf(c.Generation.DefaultMode, validModes) {
		add("generation.default_mode", "invalid mode '%s', must be one of: %s",
			c.Generation.DefaultMode, strings.Join(validModes, ", "))
	}
	if c.Generation.DefaultSlides < 1 || c.Generation.DefaultSlides > MaxSlides {
		add("generation.default_slides", "must be between 1 and %d, got %d", MaxSlides, c.Generation.DefaultSlides)
	}
	if c.Generation.Concurrency < 1 || c.Generation.Concurrency > MaxConcurrency {
		add("generation.concurrency", "must be between 1 and %d, got %d", MaxConcurrency, c.Generation.Concurrency)
	}
	if !oneOf(c.Generation.Measurer, validMeasurers) {
		add("generation.measurer", "invalid measurer '%s', must be one of: %s",
			c.Generation.Measurer, strings.Join(validMeasurers, ", "))
	}

	// Remote
	if !oneOf(c.Remote.Provider, validProviders) {
		add("remote.provider", "invalid provider '%s', must be one of: %s",
			c.Remote.Provider, strings.Join(validProviders, ", "))
	}
	if c.Remote.BaseURL != "" {
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			add("remote.base_url", "must be an absolute http(s) URL, got '%s'", c.Remote.BaseURL)
		}
	}
	if c.Remote.TimeoutSecs < 1 {
		add("remote.timeout_secs", "must be positive, got %d", c.Remote.TimeoutSecs)
	}
	if c.Remote.MaxRetries < 1 || c.Remote.MaxRetries > MaxRetries {
		add("remote.max_retries", "must be %d, got %d", MaxRetries, c.Remote.MaxRetries)
	}
	if c.Remote.RatePerMinute < 0 {
		add("remote.rate_per_minute", "must not be negative, got %d", c.Remote.RatePerMinute)
	}
	if c.Remote.BreakerFailures < 0 {
		add("remote.breaker_failures", "must not be negative, got %d", c.Remote.BreakerFailures)
	}

	// Storage
	if !oneOf(c.Storage.Backend, validBackends) {
		add("storage.backend", "invalid backend '%s', must be one of: %s",
			c.Storage.Backend, strings.Join(validBackends, ", "))
	}
	if c.Storage.MaxPresentations < 0 {
		add("storage.max_presentations", "must not be negative, got %d", c.Storage.MaxPresentations)
	}

	// Server
	if c.Server.Addr == "" {
		add("server.addr", "must not be empty")
	}
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative, got %d", c.Server.RateLimit)
	}

	// Log
	if !oneOf(c.Log.Level, validLevels) {
		add("log.level", "invalid level '%s', must be one of: %s", c.Log.Level, strings.Join(validLevels, ", "))
	}
	if !oneOf(c.Log.Format, validFormats) {
		add("log.format", "invalid format '%s', must be one of: %s", c.Log.Format, strings.Join(validFormats, ", "))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values with defaults and normalizes enumerations
// to lower case. Zero is meaningful for Seed, RateLimit, RatePerMinute and
// BreakerFailures, so those are left as they are.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Generation.DefaultMode == "" {
		c.Generation.DefaultMode = defaults.Generation.DefaultMode
	}
	if c.Generation.DefaultSlides == 0 {
		c.Generation.DefaultSlides = defaults.Generation.DefaultSlides
	}
	if c.Generation.Concurrency == 0 {
		c.Generation.Concurrency = defaults.Generation.Concurrency
	}
	if c.Generation.Measurer == "" {
		c.Generation.Measurer = defaults.Generation.Measurer
	}

	if c.Remote.Provider == "" {
		c.Remote.Provider = defaults.Remote.Provider
	}
	if c.Remote.NormalModel == "" {
		c.Remote.NormalModel = defaults.Remote.NormalModel
	}
	if c.Remote.AdvancedModel == "" {
		c.Remote.AdvancedModel = defaults.Remote.AdvancedModel
	}
	if c.Remote.TimeoutSecs == 0 {
		c.Remote.TimeoutSecs = defaults.Remote.TimeoutSecs
	}
	if c.Remote.MaxRetries == 0 {
		c.Remote.MaxRetries = defaults.Remote.MaxRetries
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaults.Storage.Dir
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = defaults.Storage.SQLitePath
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	c.Generation.DefaultMode = strings.ToLower(strings.TrimSpace(c.Generation.DefaultMode))
	c.Generation.Measurer = strings.ToLower(strings.TrimSpace(c.Generation.Measurer))
	c.Remote.Provider = strings.ToLower(strings.TrimSpace(c.Remote.Provider))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - API_KEY: overrides remote.api_key
//   - KPRESENT_API_KEY: overrides remote.api_key, wins over API_KEY
//   - KPRESENT_PROVIDER: overrides remote.provider
//   - KPRESENT_BASE_URL: overrides remote.base_url
//   - KPRESENT_MODE: overrides generation.default_mode
//   - KPRESENT_SEED: overrides generation.seed (ignored unless an integer)
//   - KPRESENT_STORAGE_DIR: overrides storage.dir
//   - KPRESENT_ADDR: overrides server.addr
//   - KPRESENT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("API_KEY"); key != "" {
		c.Remote.APIKey = key
	}
	if key := os.Getenv("KPRESENT_API_KEY"); key != "" {
		c.Remote.APIKey = key
	}
	if provider := os.Getenv("KPRESENT_PROVIDER"); provider != "" {
		c.Remote.Provider = provider
	}
	if baseURL := os.Getenv("KPRESENT_BASE_URL"); baseURL != "" {
		c.Remote.BaseURL = baseURL
	}
	if mode := os.Getenv("KPRESENT_MODE"); mode != "" {
		c.Generation.DefaultMode = mode
	}
	if seed := os.Getenv("KPRESENT_SEED"); seed != "" {
		if n, err := strconv.ParseInt(seed, 10, 64); err == nil {
			c.Generation.Seed = n
		}
	}
	if dir := os.Getenv("KPRESENT_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if addr := os.Getenv("KPRESENT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("KPRESENT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "remote.provider").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field type; lists are comma separated.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct tree using toml tags, falling back to field names.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByKey(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByKey(v reflect.Value, part string) (reflect.Value, bool) {
	t := v.Type()
	name := normalizeFieldName(part)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := strings.Split(sf.Tag.Get("toml"), ",")[0]
		if strings.EqualFold(tag, part) || strings.EqualFold(sf.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if value == nil {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}

	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			switch strings.ToLower(strings.TrimSpace(strVal)) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off", "":
				field.SetBool(false)
			default:
				return fmt.Errorf("invalid boolean value: %q", strVal)
			}
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(strVal, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if isNumeric(val.Kind()) && isNumeric(field.Kind()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"generation.default_mode",
		"generation.default_slides",
		"generation.seed",
		"generation.concurrency",
		"generation.pacing",
		"generation.measurer",
		"remote.provider",
		"remote.api_key",
		"remote.base_url",
		"remote.normal_model",
		"remote.advanced_model",
		"remote.timeout_secs",
		"remote.max_retries",
		"remote.rate_per_minute",
		"remote.breaker_failures",
		"storage.backend",
		"storage.dir",
		"storage.sqlite_path",
		"storage.max_presentations",
		"server.addr",
		"server.auth_token",
		"server.cors_origins",
		"server.rate_limit",
		"theme.custom_dir",
		"theme.default",
		"log.level",
		"log.format",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Server.CORSOrigins != nil {
		clone.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	}
	return &clone
}

// Redacted is the placeholder for secrets in String and Get output.
const Redacted = "[REDACTED]"

// IsSecret reports whether a dot-notation key holds a credential.
func IsSecret(key string) bool {
	switch strings.ToLower(key) {
	case "remote.api_key", "server.auth_token":
		return true
	}
	return false
}

// String returns a JSON rendering with credentials redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Remote.APIKey != "" {
		safe.Remote.APIKey = Redacted
	}
	if safe.Server.AuthToken != "" {
		safe.Server.AuthToken = Redacted
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
