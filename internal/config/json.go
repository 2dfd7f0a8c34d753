package config

import (
	"encoding/json"
	"os"

	"github.com/dkurov/campdir/internal/flagx"
	"github.com/dkurov/campdir/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// rely on timex.Duration so JSON can specify them either as strings like
// "5m" or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	GraphQLEndpoint string         `json:"graphql_endpoint"`
	AWSRegion       string         `json:"aws_region"`
	CognitoClientID string         `json:"cognito_client_id"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	ListCacheTTL    timex.Duration `json:"list_cache_ttl"`
}

// parseJson overlays Config with values loaded from a JSON file whose path
// comes from the -c/-config flags (flagx.JsonConfigFlags). When no path is
// given, nothing is loaded. Read or unmarshal errors panic; the caller may
// recover if desired. Intended usage is defaults -> parseJson -> parseFlags,
// where later stages override earlier ones.
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

	if jc.GraphQLEndpoint != "" {
		cfg.GraphQLEndpoint = jc.GraphQLEndpoint
	}
	if jc.AWSRegion != "" {
		cfg.AWSRegion = jc.AWSRegion
	}
	if jc.CognitoClientID != "" {
		cfg.CognitoClientID = jc.CognitoClientID
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ListCacheTTL.Duration != 0 {
		cfg.ListCacheTTL = jc.ListCacheTTL.Duration
	}
}
