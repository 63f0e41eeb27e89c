package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// nextcloudFilesAppPath matches the "files app" browser URL Nextcloud shows
// a logged-in user: /apps/files/files/<user id>.
var nextcloudFilesAppPath = regexp.MustCompile(`^/apps/files/files/(\d+)/?$`)

// NextcloudURL is a parsed Nextcloud "files app" browser URL, reduced to the
// server's base URL for use as a ncsync login/pair profile's server URL.
type NextcloudURL struct {
	Original string
	BaseURL  string // https://cloud.example.com
	UserID   string // 2743527, as shown in the browser URL; unrelated to --username
}

// ParseNextcloudURL reduces a pasted Nextcloud files-app URL
// (https://cloud.example.com/apps/files/files/USER_ID?dir=/PATH) to its
// base server URL, so users can paste the link straight out of their
// browser's address bar into `ncsync login --url`.
func ParseNextcloudURL(nextcloudURL string) (*NextcloudURL, error) {
	if nextcloudURL == "" {
		return nil, fmt.Errorf("nextcloud URL cannot be empty")
	}

	parsed, err := url.Parse(nextcloudURL)
	if err != nil {
		return nil, fmt.Errorf("parse nextcloud URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("nextcloud URL must use HTTPS, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("nextcloud URL must have a valid host")
	}
	if !strings.Contains(parsed.Path, "/apps/files/files/") {
		return nil, fmt.Errorf("nextcloud URL must contain '/apps/files/files/' path, got: %s", parsed.Path)
	}

	matches := nextcloudFilesAppPath.FindStringSubmatch(parsed.Path)
	if len(matches) != 2 {
		return nil, fmt.Errorf("invalid nextcloud files app URL, expected /apps/files/files/USER_ID")
	}

	return &NextcloudURL{
		Original: nextcloudURL,
		BaseURL:  fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host),
		UserID:   matches[1],
	}, nil
}

// NormalizeURL forces a bare server URL to HTTPS, drops a redundant :443,
// and trims a trailing slash from the path so stored server profiles
// compare and concatenate predictably.
func NormalizeURL(urlStr string) (string, error) {
	if urlStr == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	if parsed.Scheme == "" || parsed.Scheme == "http" {
		parsed.Scheme = "https"
	}
	if parsed.Port() == "443" && parsed.Scheme == "https" {
		parsed.Host = parsed.Hostname()
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	if len(parsed.Path) > 1 && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}
