package auth

import (
	"encoding/base64"
	"fmt"

	"github.com/phaus/ncsync/internal/config"
)

// AuthProvider is what webdav.WebDAVClient needs to authenticate a request.
// Credential validation against the live server is a separate concern,
// handled by CredentialValidator through the DAVClient it's given — not by
// the auth provider itself.
type AuthProvider interface {
	// GetAuthHeader returns the HTTP authorization header for authentication
	GetAuthHeader() (string, error)
}

// AppPasswordAuth implements AuthProvider for Nextcloud app passwords
type AppPasswordAuth struct {
	username    string
	appPassword string
}

// NewAppPasswordAuth creates a new app password authenticator. serverURL is
// validated but not retained: webdav.NewClient is given the server's base
// URL independently, and credential checks against it go through
// CredentialValidator, not through the auth provider.
func NewAppPasswordAuth(serverURL, username, appPassword string) (*AppPasswordAuth, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("server URL cannot be empty")
	}

	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	if appPassword == "" {
		return nil, fmt.Errorf("app password cannot be empty")
	}

	return &AppPasswordAuth{
		username:    username,
		appPassword: appPassword,
	}, nil
}

// NewAppPasswordAuthFromConfig creates an authenticator from encrypted config data
func NewAppPasswordAuthFromConfig(server config.Server) (*AppPasswordAuth, error) {
	// Decrypt the app password
	password, err := config.DecryptPassword(server.AppPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt app password: %w", err)
	}

	auth, err := NewAppPasswordAuth(server.URL, server.Username, password)
	if err != nil {
		// Zero out the decrypted password on error
		config.ZeroString(&password)
		return nil, err
	}

	// Zero out the decrypted password after use
	config.ZeroString(&password)

	return auth, nil
}

// GetAuthHeader returns the HTTP Basic Auth header
func (a *AppPasswordAuth) GetAuthHeader() (string, error) {
	if a.appPassword == "" {
		return "", fmt.Errorf("app password is not set")
	}

	return fmt.Sprintf("Basic %s", a.encodeCredentials()), nil
}

// encodeCredentials encodes username and password for Basic Auth
func (a *AppPasswordAuth) encodeCredentials() string {
	credentials := fmt.Sprintf("%s:%s", a.username, a.appPassword)
	// Note: This base64 encoding is required by HTTP Basic Auth specification
	// The password will be zeroed after use in the calling code
	return base64Encode(credentials)
}

// Close zeroes the held app password.
func (a *AppPasswordAuth) Close() {
	a.appPassword = ""
}

// base64Encode is a helper function for base64 encoding
func base64Encode(input string) string {
	return base64.StdEncoding.EncodeToString([]byte(input))
}
