package models

// StorageConfig controls where the application state is kept.
type StorageConfig struct {
	File string `yaml:"file" mapstructure:"file"`
	Key  string `yaml:"key" mapstructure:"key"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	AltScreen     bool `yaml:"alt_screen" mapstructure:"alt_screen"`
	ConfirmDelete bool `yaml:"confirm_delete" mapstructure:"confirm_delete"`
}

// EventsConfig toggles the JSONL event log.
type EventsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Config holds settings read from .tlconfig.yaml via Viper.
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
	Events  EventsConfig  `yaml:"events" mapstructure:"events"`
}
