// Package syncerr classifies errors surfacing anywhere in the sync pass into
// the kinds of §7's error table, so the orchestrator and executor can apply
// the right propagation policy (fatal pass / fatal request / action
// failure) without each caller re-deriving it from error types.
package syncerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phaus/ncsync/internal/webdav"
)

// Kind is one row of the error table.
type Kind int

const (
	// KindUnknown covers errors not otherwise classified; treated as an
	// action failure by default, the safest of the three policies.
	KindUnknown Kind = iota
	KindNotNextcloud
	KindTLSUntrusted
	KindHTTPStatus
	KindNetworkIO
	KindDavXMLMalformed
	KindFilesystemIO
	KindStateStoreIO
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNotNextcloud:
		return "NotNextcloud"
	case KindTLSUntrusted:
		return "TlsUntrusted"
	case KindHTTPStatus:
		return "HttpStatus"
	case KindNetworkIO:
		return "NetworkIo"
	case KindDavXMLMalformed:
		return "DavXmlMalformed"
	case KindFilesystemIO:
		return "FilesystemIo"
	case KindStateStoreIO:
		return "StateStoreIo"
	case KindConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

// Fatal reports whether this kind aborts the whole sync() pass, as opposed
// to being logged and contained to the single request/action/phase.
func (k Kind) Fatal() bool {
	switch k {
	case KindNotNextcloud, KindConfig:
		return true
	default:
		return false
	}
}

// NotNextcloud wraps the server-identity check's failure.
func NotNextcloud(baseURL string, cause error) error {
	return &classified{kind: KindNotNextcloud, msg: fmt.Sprintf("%s does not identify as Nextcloud", baseURL), cause: cause}
}

// Config wraps a fatal configuration problem (missing credentials, bad base
// URL) discovered before a sync pass begins.
func Config(msg string, cause error) error {
	return &classified{kind: KindConfig, msg: msg, cause: cause}
}

// StateStoreIO wraps a database error whose transaction has been rolled
// back; the phase logs it and continues with the next phase.
func StateStoreIO(msg string, cause error) error {
	return &classified{kind: KindStateStoreIO, msg: msg, cause: cause}
}

// FilesystemIO wraps a local read/write/unlink failure.
func FilesystemIO(msg string, cause error) error {
	return &classified{kind: KindFilesystemIO, msg: msg, cause: cause}
}

type classified struct {
	kind  Kind
	msg   string
	cause error
}

func (e *classified) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *classified) Unwrap() error { return e.cause }

// Classify inspects err's chain and returns the matching Kind. It recognizes
// the explicitly-constructed kinds above, webdav.StatusError/TLSError, and
// falls back to KindUnknown (action-failure policy) for everything else.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var c *classified
	if errors.As(err, &c) {
		return c.kind
	}

	var tlsErr *webdav.TLSError
	if errors.As(err, &tlsErr) {
		return KindTLSUntrusted
	}

	var statusErr *webdav.StatusError
	if errors.As(err, &statusErr) {
		return KindHTTPStatus
	}

	if webdav.IsTemporaryNetworkError(err) {
		return KindNetworkIO
	}

	// ParsePropfind reports a wholly malformed document this way; there is
	// no dedicated type for it since webdav must not import syncerr.
	if strings.Contains(err.Error(), "malformed multistatus") {
		return KindDavXMLMalformed
	}

	return KindUnknown
}
