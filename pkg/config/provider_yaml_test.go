package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestYAMLProviderLoadConfig(t *testing.T) {
	raw := `
storage:
  sqlite:
    path: climatology.db
controllers:
  - type: rest
    rest:
      listen_addr: 127.0.0.1
      port: 9090
      default_trials: 50000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	provider := NewYAMLProvider(path)
	defer provider.Close()

	data, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if data.Storage.SQLite == nil || data.Storage.SQLite.Path != "climatology.db" {
		t.Errorf("unexpected storage config: %+v", data.Storage)
	}
	if data.Storage.TimescaleDB != nil {
		t.Errorf("expected no timescaledb config, got %+v", data.Storage.TimescaleDB)
	}

	if len(data.Controllers) != 1 {
		t.Fatalf("expected 1 controller, got %d", len(data.Controllers))
	}
	rest := data.Controllers[0].RESTServer
	if data.Controllers[0].Type != "rest" || rest == nil {
		t.Fatalf("expected a rest controller, got %+v", data.Controllers[0])
	}
	if rest.ListenAddr != "127.0.0.1" || rest.Port != 9090 || rest.DefaultTrials != 50000 {
		t.Errorf("unexpected rest config: %+v", rest)
	}
}

func TestYAMLProviderSections(t *testing.T) {
	raw := `
storage:
  timescaledb:
    connection_string: "host=localhost dbname=rainodds"
controllers:
  - type: rest
    rest:
      port: 8080
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	provider := NewYAMLProvider(path)
	defer provider.Close()

	storage, err := provider.GetStorageConfig()
	if err != nil {
		t.Fatalf("GetStorageConfig failed: %v", err)
	}
	if storage.TimescaleDB == nil || storage.TimescaleDB.ConnectionString != "host=localhost dbname=rainodds" {
		t.Errorf("unexpected storage config: %+v", storage)
	}

	controllers, err := provider.GetControllers()
	if err != nil {
		t.Fatalf("GetControllers failed: %v", err)
	}
	if len(controllers) != 1 || controllers[0].RESTServer == nil || controllers[0].RESTServer.Port != 8080 {
		t.Errorf("unexpected controllers: %+v", controllers)
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	provider := NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
