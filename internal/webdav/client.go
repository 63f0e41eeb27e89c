package webdav

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phaus/ncsync/internal/auth"
	"github.com/phaus/ncsync/internal/utils"
)

// Client defines the whole-file WebDAV operations the sync engine needs.
// There is deliberately no chunked or resumable upload: transfers are
// whole-file PUT/GET only.
type Client interface {
	// Propfind issues a PROPFIND at the given depth and returns the raw
	// multistatus body for ParsePropfind to decode.
	Propfind(ctx context.Context, url string, depth string) (io.ReadCloser, error)

	// Get downloads the resource at url.
	Get(ctx context.Context, url string) (io.ReadCloser, error)

	// Put uploads content to url, tagging it with the local mtime in
	// whole seconds via X-OC-MTime.
	Put(ctx context.Context, url string, content io.Reader, size int64, mtimeSeconds int64) error

	// Delete removes the resource at url. A 404 response is treated as
	// success (the resource is already gone).
	Delete(ctx context.Context, url string) error

	// Mkcol creates the collection at url. A 405 (already exists) is
	// treated as success.
	Mkcol(ctx context.Context, url string) error

	// CheckServerIdentity performs the pre-pass identity check: GET on
	// baseURL, accepted iff an X-Nextcloud-* header is present or the
	// body contains the case-insensitive substring "nextcloud".
	CheckServerIdentity(ctx context.Context, baseURL string) error

	// Close releases idle connections and the auth provider.
	Close() error
}

// WebDAVClient is the default Client implementation.
type WebDAVClient struct {
	auth        auth.AuthProvider
	userAgent   string
	httpClient  *http.Client
	retryConfig *utils.RetryConfig
}

// SetRetryConfig overrides the default request-level backoff retry policy.
func (c *WebDAVClient) SetRetryConfig(config *utils.RetryConfig) {
	c.retryConfig = config
}

// NewClient builds a client around authProvider. TLS certificate
// verification is always on; there is no option to disable it.
func NewClient(authProvider auth.AuthProvider) (*WebDAVClient, error) {
	if authProvider == nil {
		return nil, fmt.Errorf("webdav: auth provider cannot be nil")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
			},
		},
	}

	return &WebDAVClient{
		auth:        authProvider,
		userAgent:   "ncsync/1.0",
		httpClient:  client,
		retryConfig: utils.DefaultRetryConfig(),
	}, nil
}

// createRequest builds an HTTP request carrying the Basic Auth header.
func (c *WebDAVClient) createRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("webdav: create %s request: %w", method, err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	authHeader, err := c.auth.GetAuthHeader()
	if err != nil {
		return nil, fmt.Errorf("webdav: auth header: %w", err)
	}
	req.Header.Set("Authorization", authHeader)

	return req, nil
}

// doRequest executes req with the request-level backoff retry, wrapping
// transport-level TLS verification failures in a TLSError and non-2xx
// responses in a StatusError.
func (c *WebDAVClient) doRequest(req *http.Request) (*http.Response, error) {
	var resp *http.Response

	err := utils.RetryWithBackoff(req.Context(), c.retryConfig, IsTemporaryNetworkError, func() error {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		if doErr != nil {
			if isTLSVerificationError(doErr) {
				return &TLSError{Host: req.URL.Host, Err: doErr}
			}
			return fmt.Errorf("webdav: %s %s: %w", req.Method, req.URL.Path, doErr)
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return NewStatusError(resp.StatusCode, req.URL.Path, req.Method)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// isTLSVerificationError reports whether err originated from certificate
// verification. It checks for crypto/x509's verification error types with
// errors.As and, since crypto/tls does not always wrap them, falls back to
// matching "x509" or "certificate" in the message.
func isTLSVerificationError(err error) bool {
	var certErr x509.UnknownAuthorityError
	if errors.As(err, &certErr) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &invalidErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "x509") || strings.Contains(msg, "certificate")
}

// Propfind implements Client.Propfind.
func (c *WebDAVClient) Propfind(ctx context.Context, url string, depth string) (io.ReadCloser, error) {
	req, err := c.createRequest(ctx, "PROPFIND", url, strings.NewReader(propfindBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", depth)
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.ContentLength = int64(len(propfindBody))

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("webdav: propfind %s: %w", url, err)
	}
	return resp.Body, nil
}

// Get implements Client.Get.
func (c *WebDAVClient) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := c.createRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("webdav: get %s: %w", url, err)
	}
	return resp.Body, nil
}

// Put implements Client.Put.
func (c *WebDAVClient) Put(ctx context.Context, url string, content io.Reader, size int64, mtimeSeconds int64) error {
	req, err := c.createRequest(ctx, http.MethodPut, url, content)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-OC-MTime", strconv.FormatInt(mtimeSeconds, 10))
	if size >= 0 {
		req.ContentLength = size
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return fmt.Errorf("webdav: put %s: %w", url, err)
	}
	defer resp.Body.Close()
	return nil
}

// Delete implements Client.Delete. A 404 is treated as success per B3.
func (c *WebDAVClient) Delete(ctx context.Context, url string) error {
	req, err := c.createRequest(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		if se, ok := AsStatusError(err); ok && se.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("webdav: delete %s: %w", url, err)
	}
	defer resp.Body.Close()
	return nil
}

// Mkcol implements Client.Mkcol.
func (c *WebDAVClient) Mkcol(ctx context.Context, url string) error {
	req, err := c.createRequest(ctx, "MKCOL", url, nil)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(req)
	if err != nil {
		if se, ok := AsStatusError(err); ok && se.StatusCode == http.StatusMethodNotAllowed {
			return nil
		}
		return fmt.Errorf("webdav: mkcol %s: %w", url, err)
	}
	defer resp.Body.Close()
	return nil
}

// CheckServerIdentity implements Client.CheckServerIdentity.
func (c *WebDAVClient) CheckServerIdentity(ctx context.Context, baseURL string) error {
	req, err := c.createRequest(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.doRequestWithoutRetry(req)
	if err != nil {
		return fmt.Errorf("webdav: server identity check: %w", err)
	}
	defer resp.Body.Close()

	for header := range resp.Header {
		if strings.HasPrefix(strings.ToLower(header), "x-nextcloud-") {
			return nil
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("webdav: server identity check: read body: %w", err)
	}
	if strings.Contains(strings.ToLower(string(body)), "nextcloud") {
		return nil
	}

	return fmt.Errorf("webdav: %s does not identify as a Nextcloud server", baseURL)
}

// doRequestWithoutRetry executes req once, converting non-2xx responses to
// StatusErrors but skipping the backoff retry. Used for the server-identity
// check, which must fail fast rather than retry against a host that might
// not even be Nextcloud.
func (c *WebDAVClient) doRequestWithoutRetry(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTLSVerificationError(err) {
			return nil, &TLSError{Host: req.URL.Host, Err: err}
		}
		return nil, fmt.Errorf("webdav: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, NewStatusError(resp.StatusCode, req.URL.Path, req.Method)
	}
	return resp, nil
}

// Close releases idle connections and closes the auth provider, if it
// supports closing.
func (c *WebDAVClient) Close() error {
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	if closer, ok := c.auth.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}
