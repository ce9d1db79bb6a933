package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/worldclock/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After
// parsing, values are copied into the runtime Config.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
	DatabaseDSN        string `json:"database_dsn"`
	AccessToken        string `json:"access_token"`
}

// parseJson overlays Config with values loaded from a JSON file whose
// path comes from the -c or -config flags; when neither is set, nothing
// is loaded. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.AccessToken = jc.AccessToken
}
