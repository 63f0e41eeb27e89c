package auth

import (
	"fmt"
	"strings"

	"github.com/phaus/ncsync/internal/config"
)

// AppPasswordManager validates and encrypts Nextcloud app passwords for
// storage in a server profile (config.Server) of the encrypted credential
// config.
type AppPasswordManager struct{}

// NewAppPasswordManager creates a new app password manager.
func NewAppPasswordManager() *AppPasswordManager {
	return &AppPasswordManager{}
}

// ValidateAppPasswordFormat validates if the app password format is correct
func (m *AppPasswordManager) ValidateAppPasswordFormat(password string) error {
	if password == "" {
		return fmt.Errorf("app password cannot be empty")
	}

	// Nextcloud app passwords are typically 20-40 characters long
	// Format: xxxxx-xxxxx-xxxxx-xxxxx-xxxxx-xxxxx or similar
	if len(password) < 15 || len(password) > 50 {
		return fmt.Errorf("app password appears to be invalid length (expected 15-50 characters, got %d)", len(password))
	}

	// Check for typical Nextcloud app password pattern (groups of alphanumeric characters separated by dashes)
	parts := strings.Split(password, "-")
	if len(parts) >= 3 {
		for i, part := range parts {
			if len(part) < 3 {
				return fmt.Errorf("app password part %d appears to be too short", i+1)
			}
		}
	}

	// Basic character validation - Nextcloud app passwords use alphanumeric characters and dashes
	for _, char := range password {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-') {
			return fmt.Errorf("app password contains invalid character: %c", char)
		}
	}

	return nil
}

// EncryptAndStoreAppPassword encrypts an app password for storage
func (m *AppPasswordManager) EncryptAndStoreAppPassword(password string) (config.EncryptedData, error) {
	if err := m.ValidateAppPasswordFormat(password); err != nil {
		return config.EncryptedData{}, fmt.Errorf("invalid app password format: %w", err)
	}

	encrypted, err := config.EncryptPassword(password)
	if err != nil {
		return config.EncryptedData{}, fmt.Errorf("failed to encrypt app password: %w", err)
	}

	return encrypted, nil
}

// ValidateServerCredentials validates server configuration including credentials
func (m *AppPasswordManager) ValidateServerCredentials(serverURL, username, appPassword string) error {
	if serverURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if appPassword == "" {
		return fmt.Errorf("app password cannot be empty")
	}

	// Validate app password format
	if err := m.ValidateAppPasswordFormat(appPassword); err != nil {
		return fmt.Errorf("invalid app password: %w", err)
	}

	// Validate server URL format
	if !strings.HasPrefix(serverURL, "https://") {
		return fmt.Errorf("server URL must use HTTPS")
	}

	if !strings.Contains(serverURL, ".") {
		return fmt.Errorf("server URL appears to be invalid")
	}

	return nil
}

// CreateServerConfig creates a server configuration with encrypted app password
func (m *AppPasswordManager) CreateServerConfig(serverURL, username, appPassword string) (config.Server, error) {
	if err := m.ValidateServerCredentials(serverURL, username, appPassword); err != nil {
		return config.Server{}, err
	}

	// Encrypt the app password
	encryptedPassword, err := m.EncryptAndStoreAppPassword(appPassword)
	if err != nil {
		return config.Server{}, fmt.Errorf("failed to encrypt app password: %w", err)
	}

	return config.Server{
		URL:         serverURL,
		Username:    username,
		AppPassword: encryptedPassword,
	}, nil
}

// RotateAppPassword re-encrypts a stored app password under a fresh
// salt/nonce, e.g. after a machine secret rotation.
func (m *AppPasswordManager) RotateAppPassword(oldEncrypted config.EncryptedData) (config.EncryptedData, error) {
	return config.RotateEncryption(oldEncrypted)
}
