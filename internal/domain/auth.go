package domain

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIKeyScheme prefixes the API key in the Authorization header.
const APIKeyScheme = "X-Auth-Key"

// Credentials stores the process-wide APIMatic credential.
// It is read once at startup and never changes afterwards.
type Credentials struct {
	APIKey    string
	UserAgent string
}

// AuthenticationManager hands out HTTP clients that authenticate every call
// with the configured API key.
type AuthenticationManager struct {
	credentials *Credentials
}

// NewAuthenticationManager creates a new authentication manager.
func NewAuthenticationManager(credentials *Credentials) *AuthenticationManager {
	return &AuthenticationManager{
		credentials: credentials,
	}
}

// NewAuthenticationManagerFromConfig creates an authentication manager from a configuration.
func NewAuthenticationManagerFromConfig(config *Config) *AuthenticationManager {
	return NewAuthenticationManager(&Credentials{
		APIKey:    config.APIMatic.APIKey,
		UserAgent: config.APIMatic.UserAgent,
	})
}

// GetAuthenticatedClient returns an HTTP client with authentication headers configured.
// A zero timeout leaves the client without a deadline.
// Returns an error if the credentials are missing.
func (am *AuthenticationManager) GetAuthenticatedClient(timeout time.Duration) (*http.Client, error) {
	if err := am.ValidateCredentials(); err != nil {
		return nil, err
	}

	transport := &authenticatedTransport{
		base:        http.DefaultTransport,
		credentials: am.credentials,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// ValidateCredentials checks that an API key is present.
func (am *AuthenticationManager) ValidateCredentials() error {
	return validateCredentials(am.credentials)
}

// validateCredentials validates a Credentials object.
func validateCredentials(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials cannot be nil")
	}
	if strings.TrimSpace(creds.APIKey) == "" {
		return fmt.Errorf("api key is required for authentication")
	}
	return nil
}

// authenticatedTransport is an http.RoundTripper that adds authentication headers.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper by adding authentication headers to requests.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())

	clonedReq.Header.Set("Authorization", APIKeyScheme+" "+t.credentials.APIKey)

	userAgent := t.credentials.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	clonedReq.Header.Set("User-Agent", userAgent)

	return t.base.RoundTrip(clonedReq)
}
