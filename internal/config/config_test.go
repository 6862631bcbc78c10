// This test file verifies the configuration loading logic using Viper.
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		if cfg.Port != 8484 {
			t.Errorf("Expected default port 8484, got %d", cfg.Port)
		}
		if cfg.Catalog.PageSize != 1000 {
			t.Errorf("Expected default page size 1000, got %d", cfg.Catalog.PageSize)
		}
		if cfg.Server.RequestTimeout != 10 {
			t.Errorf("Expected default request timeout 10s, got %d", cfg.Server.RequestTimeout)
		}
		if cfg.Server.MinVersion != "10.8.0" {
			t.Errorf("Expected default min version 10.8.0, got %q", cfg.Server.MinVersion)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		configContent := `
port: 9999
credstore:
  path: "/tmp/test-creds.db"
catalog:
  page_size: 50
  refresh_interval: 15
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.Credstore.Path != "/tmp/test-creds.db" {
			t.Errorf("Expected credstore path from file, got %q", cfg.Credstore.Path)
		}
		if cfg.Catalog.PageSize != 50 {
			t.Errorf("Expected page size 50, got %d", cfg.Catalog.PageSize)
		}
		if cfg.Catalog.RefreshInterval != 15 {
			t.Errorf("Expected refresh interval 15, got %d", cfg.Catalog.RefreshInterval)
		}
	})

	t.Run("Environment variable overrides", func(t *testing.T) {
		os.Remove("config.yml")
		t.Setenv("TRUPHOTOS_CATALOG_PAGE_SIZE", "250")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}
		if cfg.Catalog.PageSize != 250 {
			t.Errorf("Expected env override page size 250, got %d", cfg.Catalog.PageSize)
		}
	})
}

func TestWatchDeliversReloadedConfig(t *testing.T) {
	configPath := "config.yml"
	if err := os.WriteFile(configPath, []byte("catalog:\n  page_size: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(configPath)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() returned an error: %v", err)
	}

	reloaded := make(chan *Config, 8)
	Watch(func(cfg *Config) { reloaded <- cfg })

	// Give the watcher a moment to attach before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(configPath, []byte("catalog:\n  page_size: 75\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Catalog.PageSize == 75 {
				return
			}
			// A write can fire more than one event; keep waiting for the
			// final content.
		case <-deadline:
			t.Fatal("Watch did not deliver the reloaded config")
		}
	}
}
