// Copyright 2026 the cosmos-go authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cosmos

import (
	"os"
	"sync"

	"github.com/posthog/posthog-go"
)

const (
	telemetryAPIKey = "phc_Jd41yYTzZ8V2K1r0cNmXq7TkPu3sEw9gHb5LcRaD0fi"
	telemetryHost   = "https://us.i.posthog.com"
)

var (
	telemetryClient      posthog.Client
	telemetryOnce        sync.Once
	telemetryEnabled     = true
	telemetryInitialized = false
)

// initTelemetry initializes the PostHog client (lazy, called once).
func initTelemetry() {
	telemetryOnce.Do(func() {
		// Check if telemetry is disabled via environment variable
		if os.Getenv("COSMOS_DISABLE_TELEMETRY") == "true" {
			telemetryEnabled = false
			return
		}

		client, err := posthog.NewWithConfig(
			telemetryAPIKey,
			posthog.Config{
				Endpoint: telemetryHost,
			},
		)
		if err != nil {
			// Failed to initialize, disable telemetry
			telemetryEnabled = false
			return
		}

		telemetryClient = client
		telemetryInitialized = true
	})
}

// trackEvent sends an event to PostHog with static metadata only.
func trackEvent(eventName string, properties map[string]interface{}) {
	initTelemetry()

	if !telemetryEnabled || !telemetryInitialized {
		return
	}

	// Add SDK metadata to all events
	if properties == nil {
		properties = make(map[string]interface{})
	}
	properties["sdk_version"] = Version
	properties["sdk_language"] = "go"

	// Use anonymous distinct ID (we don't track users)
	distinctID := "anonymous"

	// Enqueue event (non-blocking)
	_ = telemetryClient.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      eventName,
		Properties: properties,
	})
}

// trackClientCreated tracks when a client is successfully constructed.
func trackClientCreated(credentialKind string) {
	trackEvent("client_created", map[string]interface{}{
		"credential_kind": credentialKind,
	})
}

// trackError tracks error events with the taxonomy kind and operation.
func trackError(errorKind, operation string) {
	trackEvent(errorKind, map[string]interface{}{
		"error_kind": errorKind,
		"operation":  operation,
	})
}

// flushTelemetry closes the PostHog client (called on client shutdown).
func flushTelemetry() {
	if telemetryInitialized && telemetryClient != nil {
		_ = telemetryClient.Close()
	}
}
