// Package pathcodec converts between the three path views the sync engine
// juggles: pair-relative storage paths, WebDAV hrefs, and absolute request
// URLs. All three must round-trip losslessly through percent-encoding.
package pathcodec

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// davPrefixSegments is the number of leading href segments that identify the
// WebDAV files endpoint itself (remote.php/dav/files/<user>) and carry no
// path information relative to a pair's root.
const davPrefixSegments = 4

// RootSentinel is returned by HrefToRelative when the href names the pair
// root itself.
const RootSentinel = "/"

// HrefToRelative parses a <d:href> value and strips the leading
// "remote.php/dav/files/<user>" segments, returning the pair-relative,
// percent-decoded path. An href that names the files endpoint itself yields
// RootSentinel.
func HrefToRelative(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("pathcodec: parse href %q: %w", href, err)
	}

	segments := splitNonEmpty(u.Path)
	if len(segments) < davPrefixSegments {
		segments = nil
	} else {
		segments = segments[davPrefixSegments:]
	}

	if len(segments) == 0 {
		return RootSentinel, nil
	}

	decoded := make([]string, len(segments))
	for i, seg := range segments {
		d, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("pathcodec: decode segment %q: %w", seg, err)
		}
		decoded[i] = d
	}

	return strings.Join(decoded, "/"), nil
}

// RelativeToURL builds the absolute WebDAV request URL for a path relative
// to a pair's remote root. Space is encoded as %20, never '+'.
func RelativeToURL(baseURL, username, pairRemoteRoot, relative string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("pathcodec: parse base URL %q: %w", baseURL, err)
	}

	segments := []string{"remote.php", "dav", "files", username}
	segments = append(segments, splitNonEmpty(pairRemoteRoot)...)
	if relative != "" && relative != RootSentinel {
		segments = append(segments, splitNonEmpty(relative)...)
	}

	encoded := make([]string, len(segments))
	for i, seg := range segments {
		encoded[i] = encodeSegment(seg)
	}

	base.Path = ""
	base.RawPath = ""
	result := strings.TrimSuffix(base.String(), "/") + "/" + strings.Join(encoded, "/")
	return result, nil
}

// StripRoot removes a pair's remote root prefix from a dav-prefix-relative
// path (as returned by HrefToRelative) to obtain the pair-relative path
// stored in Entry.path. A path outside pairRemoteRoot is returned unchanged.
func StripRoot(pairRemoteRoot, relative string) string {
	root := strings.Trim(pairRemoteRoot, "/")
	if root == "" || relative == RootSentinel {
		return relative
	}
	if relative == root {
		return RootSentinel
	}
	prefix := root + "/"
	if strings.HasPrefix(relative, prefix) {
		return strings.TrimPrefix(relative, prefix)
	}
	return relative
}

// LocalOf joins a pair's local root with a relative path, converting to the
// platform's native separators.
func LocalOf(pairLocalRoot, relative string) string {
	if relative == "" || relative == RootSentinel {
		return pairLocalRoot
	}
	parts := strings.Split(relative, "/")
	return filepath.Join(append([]string{pairLocalRoot}, parts...)...)
}

// encodeSegment percent-encodes a single path segment the way net/url's
// RequestURI does: %20 for spaces, never the query-string '+' form.
func encodeSegment(seg string) string {
	u := url.URL{Path: "/" + seg}
	encoded := u.EscapedPath()
	return strings.TrimPrefix(encoded, "/")
}

func splitNonEmpty(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
