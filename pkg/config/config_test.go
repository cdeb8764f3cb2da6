package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/plyfile/pkg/ply"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./data", config.DataDir)
	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "127.0.0.1", config.Bind)
	assert.Equal(t, "auto", config.Security.APIKey)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Equal(t, "binary_little_endian", config.Writer.Format)
	assert.Equal(t, "1.0", config.Writer.Version)
	assert.Equal(t, 3, config.Archive.CompressionLevel)
	assert.NoError(t, config.Validate())
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64) // 32 bytes = 64 hex characters

		_, err = hex.DecodeString(key)
		assert.NoError(t, err)
	})

	t.Run("generate different keys", func(t *testing.T) {
		key1, err := GenerateSecureKey(16)
		require.NoError(t, err)
		key2, err := GenerateSecureKey(16)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})
}

func TestLoadConfig(t *testing.T) {
	expected := &Config{
		DataDir: "/custom/data",
		Port:    9000,
		Bind:    "0.0.0.0",
		Security: Security{
			APIKey: "test-api-key",
		},
		Logging: Logging{
			Level:  "debug",
			Format: "json",
		},
		Writer: Writer{
			Format:  "ascii",
			Version: "1.0",
			Comment: "made in a test",
		},
		Archive: Archive{
			CompressionLevel: 9,
		},
	}

	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run("round trip "+name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveConfig(expected, configPath))

			loaded, err := LoadConfig(configPath)
			require.NoError(t, err)
			assert.Equal(t, expected, loaded)
		})
	}

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "partial.toml")
		require.NoError(t, os.WriteFile(configPath, []byte("port = 9090\n\n[writer]\nformat = \"ascii\"\n"), 0600))

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, 9090, loaded.Port)
		assert.Equal(t, "ascii", loaded.Writer.Format)
		assert.Equal(t, "1.0", loaded.Writer.Version)
		assert.Equal(t, "info", loaded.Logging.Level)
	})

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"invalid yaml", "invalid.yaml", "invalid: yaml: content: ["},
		{"invalid toml", "invalid.toml", "port = = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0600))

			_, err := LoadConfig(configPath)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse config file")
		})
	}
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := DefaultConfig()

	require.NoError(t, SaveConfig(config, configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestSaveConfigErrorHandling(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := SaveConfig(DefaultConfig(), filepath.Join(blocker, "sub", "config.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}

func TestBootstrapConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	dataDir := "/custom/data/dir"

	config, err := BootstrapConfig(configPath, dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, config.DataDir)
	assert.Equal(t, 8080, config.Port)
	assert.NotEqual(t, "auto", config.Security.APIKey)
	_, err = hex.DecodeString(config.Security.APIKey)
	assert.NoError(t, err)

	assert.True(t, ConfigExists(configPath))
	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Port = 0 }, "port out of range"},
		{"unknown writer format", func(c *Config) { c.Writer.Format = "binary" }, "unknown writer format"},
		{"bad version", func(c *Config) { c.Writer.Version = "1" }, "invalid writer version"},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, "unknown log level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "unknown log format"},
		{"compression", func(c *Config) { c.Archive.CompressionLevel = 30 }, "compression level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriterFormat(t *testing.T) {
	config := DefaultConfig()
	config.Writer.Format = "ASCII"
	format, err := config.WriterFormat()
	require.NoError(t, err)
	assert.Equal(t, ply.ASCII, format)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "plyctl")
	assert.Contains(t, path, ".yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingPath := filepath.Join(tmpDir, "exists.yaml")
	require.NoError(t, os.WriteFile(existingPath, []byte("test"), 0644))

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(filepath.Join(tmpDir, "does-not-exist.yaml")))
}
