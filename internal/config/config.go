package config

import "time"

// Config holds runtime settings for the campdir CLI.
//
// Fields:
//   - GraphQLEndpoint: URL of the directory's GraphQL API.
//   - AWSRegion: region of the Cognito user pool.
//   - CognitoClientID: Cognito user-pool app client id.
//   - RequestTimeout: per-request HTTP timeout for data calls.
//   - ListCacheTTL: how long a fetched listings page stays fresh.
type Config struct {
	GraphQLEndpoint string
	AWSRegion       string
	CognitoClientID string
	RequestTimeout  time.Duration
	ListCacheTTL    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.GraphQLEndpoint = "http://127.0.0.1:4000/graphql"
	c.AWSRegion = "us-east-1"
	c.CognitoClientID = ""
	c.RequestTimeout = 15 * time.Second
	c.ListCacheTTL = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
