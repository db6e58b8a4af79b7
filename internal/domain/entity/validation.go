package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxEndpointLength defines the maximum allowed length for push endpoints to
// prevent abuse via oversized registration payloads.
const maxEndpointLength = 2048

// ValidatePushSubscription checks a browser push subscription before it is
// stored. The endpoint must be a well-formed HTTPS URL (push services only
// speak HTTPS) and both key fields must be present, otherwise every later
// send would fail undecryptably.
func ValidatePushSubscription(sub PushSubscription) error {
	if sub.Endpoint == "" {
		return &ValidationError{Field: "endpoint", Message: "endpoint is required"}
	}
	if len(sub.Endpoint) > maxEndpointLength {
		return &ValidationError{
			Field:   "endpoint",
			Message: fmt.Sprintf("endpoint must not exceed %d characters", maxEndpointLength),
		}
	}

	parsed, err := url.Parse(sub.Endpoint)
	if err != nil {
		return &ValidationError{Field: "endpoint", Message: "endpoint is not a valid URL"}
	}
	if parsed.Scheme != "https" {
		return &ValidationError{Field: "endpoint", Message: "endpoint must use https scheme"}
	}
	if parsed.Host == "" {
		return &ValidationError{Field: "endpoint", Message: "endpoint must have a host"}
	}

	if strings.TrimSpace(sub.P256dh) == "" {
		return &ValidationError{Field: "keys.p256dh", Message: "p256dh key is required"}
	}
	if strings.TrimSpace(sub.Auth) == "" {
		return &ValidationError{Field: "keys.auth", Message: "auth secret is required"}
	}
	return nil
}

// ValidateDeviceToken checks a native push token before it is stored.
// Tokens are opaque, so only emptiness and gross size are checked.
func ValidateDeviceToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return &ValidationError{Field: "token", Message: "token is required"}
	}
	if len(token) > 4096 {
		return &ValidationError{Field: "token", Message: "token is implausibly long"}
	}
	return nil
}
