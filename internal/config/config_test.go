// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ApplyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"API_KEY", "KPRESENT_API_KEY", "KPRESENT_PROVIDER", "KPRESENT_BASE_URL",
		"KPRESENT_MODE", "KPRESENT_SEED", "KPRESENT_STORAGE_DIR", "KPRESENT_ADDR",
		"KPRESENT_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "normal", cfg.Generation.DefaultMode)
	assert.Equal(t, 5, cfg.Generation.DefaultSlides)
	assert.Equal(t, 1, cfg.Generation.Concurrency)
	assert.False(t, cfg.Generation.Pacing)
	assert.Equal(t, 60, cfg.Remote.TimeoutSecs)
	assert.Equal(t, 60*time.Second, cfg.Remote.Timeout())
	assert.Equal(t, 1, cfg.Remote.MaxRetries)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, 100, cfg.Storage.MaxPresentations)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr)
	assert.Equal(t, DefaultNormalModel, cfg.Remote.NormalModel)
	assert.Equal(t, DefaultAdvancedModel, cfg.Remote.AdvancedModel)
}

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", `
[generation]
default_mode = "Advanced"
default_slides = 7
seed = 42
concurrency = 3

[remote]
provider = "openrouter"
api_key = "sk-test"

[storage]
backend = "sqlite"

[server]
cors_origins = ["http://localhost:3000"]

[theme]
default = "theme-deep-ocean"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "advanced", cfg.Generation.DefaultMode, "modes are normalized")
	assert.Equal(t, 7, cfg.Generation.DefaultSlides)
	assert.Equal(t, int64(42), cfg.Generation.Seed)
	assert.Equal(t, 3, cfg.Generation.Concurrency)
	assert.Equal(t, "openrouter", cfg.Remote.Provider)
	assert.Equal(t, "sk-test", cfg.Remote.APIKey)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "theme-deep-ocean", cfg.Theme.Default)

	// Untouched keys keep their defaults.
	assert.Equal(t, 60, cfg.Remote.TimeoutSecs)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromPath_JSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.json",
		`{"generation": {"default_slides": 10}, "log": {"format": "json"}}`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Generation.DefaultSlides)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromPath_UnknownKey(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", "[generation]\nslides = 3\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation.slides")
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", `
[generation]
default_mode = "turbo"
concurrency = 99

[storage]
backend = "postgres"
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"generation.default_mode",
		"generation.concurrency",
		"storage.backend",
	}, fields)
}

func TestLoadFromPath_PermissionsTightened(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", "[log]\nlevel = \"debug\"\n")
	require.NoError(t, os.Chmod(path, 0644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm()&0077 != 0 && os.PathSeparator == '/' {
		t.Errorf("permissions not tightened: %o", info.Mode().Perm())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero slides", func(c *Config) { c.Generation.DefaultSlides = 0 }, "generation.default_slides"},
		{"too many slides", func(c *Config) { c.Generation.DefaultSlides = MaxSlides + 1 }, "generation.default_slides"},
		{"bad measurer", func(c *Config) { c.Generation.Measurer = "ruler" }, "generation.measurer"},
		{"bad provider", func(c *Config) { c.Remote.Provider = "acme" }, "remote.provider"},
		{"relative base url", func(c *Config) { c.Remote.BaseURL = "api.example.com" }, "remote.base_url"},
		{"zero timeout", func(c *Config) { c.Remote.TimeoutSecs = 0 }, "remote.timeout_secs"},
		{"zero retries", func(c *Config) { c.Remote.MaxRetries = 0 }, "remote.max_retries"},
		{"retry loop", func(c *Config) { c.Remote.MaxRetries = 2 }, "remote.max_retries"},
		{"negative rate", func(c *Config) { c.Remote.RatePerMinute = -1 }, "remote.rate_per_minute"},
		{"negative retention", func(c *Config) { c.Storage.MaxPresentations = -1 }, "storage.max_presentations"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestSetDefaults_KeepsMeaningfulZeros(t *testing.T) {
	cfg := &Config{}
	cfg.Remote.RatePerMinute = 0
	cfg.Remote.BreakerFailures = 0
	cfg.SetDefaults()

	assert.Equal(t, 0, cfg.Remote.RatePerMinute)
	assert.Equal(t, 0, cfg.Remote.BreakerFailures)
	assert.Equal(t, int64(0), cfg.Generation.Seed)
	assert.Equal(t, 5, cfg.Generation.DefaultSlides)
	assert.Equal(t, "file", cfg.Storage.Backend)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "from-api-key")
	t.Setenv("KPRESENT_PROVIDER", "openrouter")
	t.Setenv("KPRESENT_BASE_URL", "https://llm.example.com")
	t.Setenv("KPRESENT_MODE", "advanced")
	t.Setenv("KPRESENT_SEED", "7")
	t.Setenv("KPRESENT_STORAGE_DIR", "/tmp/decks")
	t.Setenv("KPRESENT_ADDR", ":9000")
	t.Setenv("KPRESENT_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "from-api-key", cfg.Remote.APIKey)
	assert.Equal(t, "openrouter", cfg.Remote.Provider)
	assert.Equal(t, "https://llm.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "advanced", cfg.Generation.DefaultMode)
	assert.Equal(t, int64(7), cfg.Generation.Seed)
	assert.Equal(t, "/tmp/decks", cfg.Storage.Dir)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Run("kpresent key wins", func(t *testing.T) {
		t.Setenv("KPRESENT_API_KEY", "from-kpresent")
		cfg := Default()
		cfg.ApplyEnvOverrides()
		assert.Equal(t, "from-kpresent", cfg.Remote.APIKey)
	})

	t.Run("bad seed ignored", func(t *testing.T) {
		t.Setenv("KPRESENT_SEED", "abc")
		cfg := Default()
		cfg.Generation.Seed = 3
		cfg.ApplyEnvOverrides()
		assert.Equal(t, int64(3), cfg.Generation.Seed)
	})
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("remote.timeout_secs")
	require.NoError(t, err)
	assert.Equal(t, 60, v)

	require.NoError(t, cfg.Set("remote.api_key", "abc"))
	assert.Equal(t, "abc", cfg.Remote.APIKey)

	require.NoError(t, cfg.Set("storage.sqlite_path", "/tmp/k.db"))
	assert.Equal(t, "/tmp/k.db", cfg.Storage.SQLitePath)

	require.NoError(t, cfg.Set("generation.seed", "99"))
	assert.Equal(t, int64(99), cfg.Generation.Seed)

	require.NoError(t, cfg.Set("generation.pacing", "yes"))
	assert.True(t, cfg.Generation.Pacing)

	require.NoError(t, cfg.Set("server.cors_origins", "http://a.test, http://b.test"))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)

	require.NoError(t, cfg.Set("generation.concurrency", 4))
	assert.Equal(t, 4, cfg.Generation.Concurrency)

	assert.Error(t, cfg.Set("generation.concurrency", "many"))
	assert.Error(t, cfg.Set("generation.pacing", "maybe"))
	assert.Error(t, cfg.Set("log.level", 3))
	assert.Error(t, cfg.Set("remote.nope", "x"))
	assert.Error(t, cfg.Set("log.level.deep", "x"))
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Remote.APIKey = "sk-very-secret"
	cfg.Server.AuthToken = "token-very-secret"

	s := cfg.String()
	assert.NotContains(t, s, "sk-very-secret")
	assert.NotContains(t, s, "token-very-secret")
	assert.Contains(t, s, Redacted)
	assert.Equal(t, "sk-very-secret", cfg.Remote.APIKey, "original unchanged")

	assert.True(t, IsSecret("remote.api_key"))
	assert.True(t, IsSecret("server.auth_token"))
	assert.False(t, IsSecret("server.addr"))
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	cfg.Server.CORSOrigins = []string{"http://a.test"}

	clone := cfg.Clone()
	clone.Server.CORSOrigins[0] = "http://b.test"
	clone.Remote.Provider = "none"

	assert.Equal(t, "http://a.test", cfg.Server.CORSOrigins[0])
	assert.Equal(t, "gemini", cfg.Remote.Provider)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Generation.DefaultSlides = 12
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Generation.DefaultSlides)
	assert.Equal(t, cfg.Server.CORSOrigins, loaded.Server.CORSOrigins)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".kpresent"), ExpandPath("~/.kpresent"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "~other", ExpandPath("~other"))
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", "[generation]\ndefault_slides = 3\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				changes <- cfg
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[generation]\ndefault_slides = 9\n"), 0600))

	select {
	case cfg := <-changes:
		assert.Equal(t, 9, cfg.Generation.DefaultSlides)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Generation.DefaultSlides = 7
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()
	_ = Global()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// ReloadGlobal may fail if the user has a broken config file.
			_ = ReloadGlobal()
		}()
	}
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}
