package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds the client's transport settings.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
}

// ClientShare holds the client's share-link settings.
type ClientShare struct {
	// BaseURL is used to compose share URLs handed to recipients.
	BaseURL string
}

// ClientConfig is the subset of [StructuredConfig] the CLI needs.
type ClientConfig struct {
	Adapter ClientAdapter
	Share   ClientShare
}

// GetClientConfig builds the client configuration from defaults, the JSON
// file at jsonPath (or CONFIG when jsonPath is empty) and the environment.
// Flags are owned by the CLI's command tree, not by this package.
func GetClientConfig(jsonPath string) (*ClientConfig, error) {
	b := newConfigBuilder().withDefaults().withEnv()
	if jsonPath != "" {
		b.configs[layerFlags] = &StructuredConfig{JSONFilePath: jsonPath}
	}

	cfg, err := b.withJSON().build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Share: ClientShare{
			BaseURL: cfg.Share.BaseURL,
		},
	}

	return clientCfg, clientCfg.validate()
}
