// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// Transport is the pre-built network collaborator the client binds to.
	// Required: this layer does not implement the protocol itself.
	Transport Transport

	// Logger receives debug events at operation boundaries. Defaults to a
	// no-op logger.
	Logger *zerolog.Logger

	// PartitionKeyFields overrides DefaultPartitionKeyFields for
	// candidate-based partition-key detection.
	PartitionKeyFields []string

	// PropertiesCacheSize bounds the per-client cache of container
	// partition-key paths. Default: 256.
	PropertiesCacheSize int

	// DisableTelemetry turns off anonymous usage analytics for this
	// client. The COSMOS_DISABLE_TELEMETRY environment variable disables
	// it process-wide.
	DisableTelemetry bool
}

// defaultPropertiesCacheSize bounds the container-properties cache when the
// caller does not choose a size.
const defaultPropertiesCacheSize = 256

// ItemOptions carries per-call options for item-scoped operations. The
// zero value is valid; a nil *ItemOptions is treated as the zero value.
type ItemOptions struct {
	// PartitionKey is an explicit routing key (string, number, or bool).
	// When set it is used verbatim, ahead of any detection heuristics.
	PartitionKey any

	// IfMatchEtag makes the operation conditional on the stored document's
	// etag; a mismatch surfaces as PreconditionFailedError.
	IfMatchEtag string
}

func (o *ItemOptions) explicitPartitionKey() any {
	if o == nil {
		return nil
	}
	return o.PartitionKey
}

func (o *ItemOptions) ifMatchEtag() string {
	if o == nil {
		return ""
	}
	return o.IfMatchEtag
}

// EnvConfig is the client configuration read from the environment.
type EnvConfig struct {
	// Endpoint is the account endpoint URL.
	Endpoint string `env:"COSMOS_ENDPOINT"`

	// Key is the account key used for credential construction.
	Key string `env:"COSMOS_KEY"`

	// DisableTelemetry turns off anonymous usage analytics.
	DisableTelemetry bool `env:"COSMOS_DISABLE_TELEMETRY"`
}

// LoadEnvConfig reads client configuration from the process environment.
func LoadEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
