package auth

import (
	"context"
	"fmt"
	"io"

	"github.com/phaus/ncsync/internal/pathcodec"
)

// DAVClient is the slice of webdav.Client the credential validator needs.
// Declared here rather than imported from internal/webdav, which already
// imports auth for AuthProvider — a *webdav.WebDAVClient built by the
// caller satisfies this structurally, with no import back into webdav.
type DAVClient interface {
	CheckServerIdentity(ctx context.Context, baseURL string) error
	Propfind(ctx context.Context, url, depth string) (io.ReadCloser, error)
}

// CredentialValidator drives a DAVClient through the two checks a new
// server profile needs before it is trusted: that the host identifies
// itself as Nextcloud, and that the configured credentials can list the
// user's own WebDAV root.
type CredentialValidator struct{}

// NewCredentialValidator returns a ready-to-use CredentialValidator. It
// holds no state of its own; every call supplies its own DAVClient.
func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{}
}

// ValidationResult reports the outcome of ValidateCredentials.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// rootDepth is the PROPFIND depth for the access probe: the root
// collection itself, no children.
const rootDepth = "0"

// ValidateCredentials runs the server-identity check and one authenticated
// PROPFIND against the user's WebDAV root through client. client must
// already be authenticated for username, i.e. built from the same
// credentials being validated.
func (v *CredentialValidator) ValidateCredentials(ctx context.Context, client DAVClient, baseURL, username string) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	if baseURL == "" || username == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "server URL and username are required")
		return result, nil
	}

	if err := client.CheckServerIdentity(ctx, baseURL); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("server identity check: %v", err))
		return result, nil
	}

	rootURL, err := pathcodec.RelativeToURL(baseURL, username, "", "")
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("build root collection URL: %v", err))
		return result, nil
	}

	body, err := client.Propfind(ctx, rootURL, rootDepth)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("authenticate against %s: %v", rootURL, err))
		return result, nil
	}
	defer body.Close()
	io.Copy(io.Discard, body)

	return result, nil
}
