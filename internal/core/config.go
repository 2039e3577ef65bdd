package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/tasklists/internal/storage"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// ConfigFileName is the config file looked up in the base directory
// (with a .yaml extension).
const ConfigFileName = ".tlconfig"

// ConfigurationManager loads and validates .tlconfig.yaml.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		Storage: models.StorageConfig{
			File: "storage.json",
			Key:  storage.DefaultStateKey,
		},
		UI: models.UIConfig{
			AltScreen:     true,
			ConfirmDelete: true,
		},
		Events: models.EventsConfig{Enabled: true},
	}
}

// LoadConfig reads .tlconfig.yaml from the base path. Missing files and
// missing keys fall back to DefaultConfig. TL_* environment variables
// override file values (e.g. TL_STORAGE_KEY).
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("TL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.file", cfg.Storage.File)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("ui.alt_screen", cfg.UI.AltScreen)
	v.SetDefault("ui.confirm_delete", cfg.UI.ConfirmDelete)
	v.SetDefault("events.enabled", cfg.Events.Enabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.Storage.File = v.GetString("storage.file")
	cfg.Storage.Key = v.GetString("storage.key")
	cfg.UI.AltScreen = v.GetBool("ui.alt_screen")
	cfg.UI.ConfirmDelete = v.GetBool("ui.confirm_delete")
	cfg.Events.Enabled = v.GetBool("events.enabled")

	return cfg, nil
}

// ValidateConfig checks cfg and reports every invalid value at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	file := strings.TrimSpace(cfg.Storage.File)
	switch {
	case file == "":
		errs = append(errs, "storage.file must not be empty")
	case !filepath.IsAbs(file) && escapesBase(file):
		errs = append(errs, fmt.Sprintf("storage.file %q must stay inside the base directory or be absolute", cfg.Storage.File))
	}

	if strings.TrimSpace(cfg.Storage.Key) == "" {
		errs = append(errs, "storage.key must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// StoragePath resolves the storage file against basePath.
func StoragePath(basePath string, cfg *models.Config) string {
	if filepath.IsAbs(cfg.Storage.File) {
		return cfg.Storage.File
	}
	return filepath.Join(basePath, cfg.Storage.File)
}

func escapesBase(rel string) bool {
	clean := filepath.Clean(rel)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
