package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

type layer int

const (
	layerDefaults layer = iota
	layerJSON
	layerEnv
	layerFlags
)

type configBuilder struct {
	configs map[layer]*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make(map[layer]*StructuredConfig, 4),
	}
}

// build merges the collected layers in priority order. Non-zero fields of a
// higher layer override the lower ones.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, l := range []layer{layerDefaults, layerJSON, layerEnv, layerFlags} {
		cfg, ok := b.configs[l]
		if !ok {
			continue
		}
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, nil
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs[layerDefaults] = defaults()
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg, err := parseEnv()
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs[layerEnv] = envCfg
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flagsCfg, err := ParseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs[layerFlags] = flagsCfg
	return b
}

// withJSON loads the file named by the highest-priority layer that sets
// JSONFilePath. It must run after withEnv and withFlags.
func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	for _, l := range []layer{layerEnv, layerFlags} {
		if cfg, ok := b.configs[l]; ok && cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}
	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs[layerJSON] = jsonCfg
	return b
}
