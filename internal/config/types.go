package config

// Config represents the main configuration structure
type Config struct {
	Version        string            `json:"version"`
	Servers        map[string]Server `json:"servers"`
	GlobalSettings GlobalSettings    `json:"global_settings"`
}

// Server represents a Nextcloud server configuration
type Server struct {
	URL         string        `json:"url"`
	Username    string        `json:"username"`
	AppPassword EncryptedData `json:"app_password"`
}

// EncryptedData represents encrypted app password with metadata
type EncryptedData struct {
	Encrypted string `json:"encrypted"`
	Salt      string `json:"salt"`
	Nonce     string `json:"nonce"`
	Algorithm string `json:"algorithm"`
}

// GlobalSettings represents application-wide settings. Chunked-upload and
// TLS-toggle fields from the original config shape are gone: transfers are
// whole-file PUT/GET only, and certificate verification is always on (see
// webdav.NewClient), so neither has a knob left to sit behind.
type GlobalSettings struct {
	MaxRetries               int `json:"max_retries"`
	TimeoutSeconds           int `json:"timeout_seconds"`
	ProgressUpdateIntervalMS int `json:"progress_update_interval_ms"`
}

// Constants for default configuration values
const (
	DefaultVersion                  = "1.0"
	DefaultMaxRetries               = 3
	DefaultTimeoutSeconds           = 30
	DefaultProgressUpdateIntervalMS = 1000
	EncryptionAlgorithm             = "aes-256-gcm"
	PBKDF2Iterations                = 100000
	SaltSize                        = 32
	NonceSize                       = 12
)
