package config

import "fmt"

// StoreConfig defines where league history is persisted.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "lfg.db"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
