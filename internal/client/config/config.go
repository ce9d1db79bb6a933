// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the world-clock CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the sync server.
//   - DatabaseDSN: path of the local SQLite replica.
//   - AccessToken: bearer token identifying the account.
type Config struct {
	ServerEndpointAddr string
	DatabaseDSN        string
	AccessToken        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabaseDSN = "worldclock.db"
	c.AccessToken = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
