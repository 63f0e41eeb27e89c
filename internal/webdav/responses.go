package webdav

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phaus/ncsync/internal/pathcodec"
)

// multistatus mirrors the WebDAV PROPFIND response body.
type multistatus struct {
	XMLName   xml.Name   `xml:"multistatus"`
	Responses []response `xml:"response"`
}

type response struct {
	Href     string   `xml:"href"`
	Propstat propstat `xml:"propstat"`
}

type propstat struct {
	Prop   prop   `xml:"prop"`
	Status string `xml:"status"`
}

type prop struct {
	DisplayName   string       `xml:"displayname"`
	ContentLength int64        `xml:"getcontentlength"`
	LastModified  string       `xml:"getlastmodified"`
	ContentType   string       `xml:"getcontenttype"`
	ResourceType  resourceType `xml:"resourcetype"`
}

type resourceType struct {
	Collection *struct{} `xml:"collection"`
}

// Record is one parsed resource from a multistatus response, per §4.3.
type Record struct {
	RemoteURL     string
	RelativePath  string
	DisplayName   string
	IsFolder      bool
	ContentLength int64
	ContentType   string
	RemoteMtimeMs int64
}

// ParsePropfind decodes a multistatus body into Records. A <d:response>
// missing href or getlastmodified is skipped, not fatal; the rest of the
// document is still processed (DavXmlMalformed tolerance).
func ParsePropfind(body io.Reader) ([]Record, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("webdav: read propfind body: %w", err)
	}

	var ms multistatus
	if err := xml.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("webdav: malformed multistatus: %w", err)
	}

	records := make([]Record, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		if r.Href == "" {
			continue
		}
		if !strings.Contains(r.Propstat.Status, "200") {
			continue
		}
		if r.Propstat.Prop.LastModified == "" {
			continue
		}

		mtime, err := parseHTTPDate(r.Propstat.Prop.LastModified)
		if err != nil {
			continue
		}

		rel, err := pathcodec.HrefToRelative(r.Href)
		if err != nil {
			continue
		}

		records = append(records, Record{
			RemoteURL:     r.Href,
			RelativePath:  rel,
			DisplayName:   r.Propstat.Prop.DisplayName,
			IsFolder:      r.Propstat.Prop.ResourceType.Collection != nil,
			ContentLength: r.Propstat.Prop.ContentLength,
			ContentType:   r.Propstat.Prop.ContentType,
			RemoteMtimeMs: mtime,
		})
	}

	return records, nil
}

// parseHTTPDate parses an RFC 1123/7231 HTTP-date (the format of
// <d:getlastmodified>) into UTC milliseconds since epoch.
func parseHTTPDate(s string) (int64, error) {
	t, err := time.Parse(time.RFC1123, s)
	if err != nil {
		t, err = time.Parse(time.RFC1123Z, s)
		if err != nil {
			return 0, fmt.Errorf("webdav: parse last-modified %q: %w", s, err)
		}
	}
	return t.UTC().UnixMilli(), nil
}
