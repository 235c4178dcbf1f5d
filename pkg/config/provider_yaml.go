package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files.
type YAMLProvider struct {
	filename string
	config   *Data
}

// NewYAMLProvider creates a new YAML configuration provider.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// yamlConfig mirrors Data with YAML tags for unmarshalling.
type yamlConfig struct {
	Storage     yamlStorage      `yaml:"storage,omitempty"`
	Controllers []yamlController `yaml:"controllers,omitempty"`
}

type yamlStorage struct {
	SQLite      *yamlSQLite      `yaml:"sqlite,omitempty"`
	TimescaleDB *yamlTimescaleDB `yaml:"timescaledb,omitempty"`
}

type yamlSQLite struct {
	Path string `yaml:"path"`
}

type yamlTimescaleDB struct {
	ConnectionString string `yaml:"connection_string"`
}

type yamlController struct {
	Type string          `yaml:"type,omitempty"`
	REST *yamlRESTServer `yaml:"rest,omitempty"`
}

type yamlRESTServer struct {
	ListenAddr    string `yaml:"listen_addr,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	TLSCert       string `yaml:"cert,omitempty"`
	TLSKey        string `yaml:"key,omitempty"`
	DefaultTrials int    `yaml:"default_trials,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file.
func (y *YAMLProvider) LoadConfig() (*Data, error) {
	raw, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var parsed yamlConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	data := &Data{}
	if parsed.Storage.SQLite != nil {
		data.Storage.SQLite = &SQLiteData{Path: parsed.Storage.SQLite.Path}
	}
	if parsed.Storage.TimescaleDB != nil {
		data.Storage.TimescaleDB = &TimescaleDBData{ConnectionString: parsed.Storage.TimescaleDB.ConnectionString}
	}
	for _, c := range parsed.Controllers {
		converted := ControllerData{Type: c.Type}
		if c.REST != nil {
			converted.RESTServer = &RESTServerData{
				ListenAddr:    c.REST.ListenAddr,
				Port:          c.REST.Port,
				TLSCert:       c.REST.TLSCert,
				TLSKey:        c.REST.TLSKey,
				DefaultTrials: c.REST.DefaultTrials,
			}
		}
		data.Controllers = append(data.Controllers, converted)
	}

	y.config = data
	return data, nil
}

// GetStorageConfig returns the storage section.
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns the controller section.
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// Close is a no-op for file-backed configuration.
func (y *YAMLProvider) Close() error {
	return nil
}
