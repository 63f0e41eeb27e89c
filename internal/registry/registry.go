// Package registry implements C9: CRUD for sync pairs, backed by the same
// store.Store SQLite handle as C4, plus the §6 QR credential-import/export
// payload codec.
package registry

import (
	"context"
	"fmt"
	"strings"

	"rsc.io/qr"

	"github.com/phaus/ncsync/internal/model"
	"github.com/phaus/ncsync/internal/store"
)

// Registry is a thin CRUD façade over *store.Store's pairs table, kept as
// its own package so C9 has a home distinct from C4's storage mechanics.
type Registry struct {
	store *store.Store
}

// New wraps an already-open state store.
func New(s *store.Store) *Registry {
	return &Registry{store: s}
}

// AddPair creates a new pair. See model.Pair for field semantics.
func (r *Registry) AddPair(ctx context.Context, remoteRoot, localRoot string, extensions, excludePatterns []string) (model.Pair, error) {
	return r.store.AddPair(ctx, remoteRoot, localRoot, extensions, excludePatterns)
}

// ListPairs returns every configured pair.
func (r *Registry) ListPairs(ctx context.Context) ([]model.Pair, error) {
	return r.store.ListPairs(ctx)
}

// RemovePair deletes a pair by its external UUID, cascading its entries (P5).
func (r *Registry) RemovePair(ctx context.Context, uuid string) error {
	pair, err := r.store.FindPairByUUID(ctx, uuid)
	if err != nil {
		return fmt.Errorf("registry: remove_pair: %w", err)
	}
	return r.store.DeletePair(ctx, pair.ID)
}

// Credentials is the parsed form of a §6 QR login payload.
type Credentials struct {
	Username string
	Password string
	Server   string
}

// ParseQRPayload decodes a §6 QR payload of the form
// "nc://login/user:<u>&password:<p>&server:<url>". Fields are split on '&',
// each then split on the first ':'; unknown keys are ignored; the "nc://
// login/" prefix is optional so the function also accepts the bare
// key:value tail.
func ParseQRPayload(s string) (Credentials, error) {
	s = strings.TrimPrefix(s, "nc://login/")
	if s == "" {
		return Credentials{}, fmt.Errorf("registry: empty qr payload")
	}

	var creds Credentials
	for _, field := range strings.Split(s, "&") {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		switch key {
		case "user":
			creds.Username = value
		case "password":
			creds.Password = value
		case "server":
			creds.Server = value
		}
	}

	if creds.Username == "" || creds.Password == "" || creds.Server == "" {
		return Credentials{}, fmt.Errorf("registry: qr payload missing user, password or server")
	}
	return creds, nil
}

// EncodeQRPayload renders a §6 login payload as a PNG QR code.
func EncodeQRPayload(username, password, server string) ([]byte, error) {
	payload := fmt.Sprintf("nc://login/user:%s&password:%s&server:%s", username, password, server)
	code, err := qr.Encode(payload, qr.M)
	if err != nil {
		return nil, fmt.Errorf("registry: encode qr: %w", err)
	}
	return code.PNG(), nil
}
