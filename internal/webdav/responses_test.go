package webdav

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMultistatus = `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/remote.php/dav/files/alice/Docs/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>Docs</d:displayname>
        <d:getlastmodified>Mon, 12 Jan 2026 10:00:00 GMT</d:getlastmodified>
        <d:resourcetype><d:collection/></d:resourcetype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/remote.php/dav/files/alice/Docs/a%20b.txt</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>a b.txt</d:displayname>
        <d:getcontentlength>42</d:getcontentlength>
        <d:getlastmodified>Mon, 12 Jan 2026 11:30:00 GMT</d:getlastmodified>
        <d:getcontenttype>text/plain</d:getcontenttype>
        <d:resourcetype/>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/remote.php/dav/files/alice/Docs/missing.txt</d:href>
    <d:propstat>
      <d:prop/>
      <d:status>HTTP/1.1 404 Not Found</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func TestParsePropfind(t *testing.T) {
	records, err := ParsePropfind(strings.NewReader(sampleMultistatus))
	require.NoError(t, err)
	require.Len(t, records, 2)

	folder := records[0]
	assert.True(t, folder.IsFolder)
	assert.Equal(t, "Docs", folder.RelativePath)

	file := records[1]
	assert.False(t, file.IsFolder)
	assert.Equal(t, "Docs/a b.txt", file.RelativePath)
	assert.Equal(t, int64(42), file.ContentLength)
	assert.Equal(t, "text/plain", file.ContentType)
	assert.Greater(t, file.RemoteMtimeMs, int64(0))
}

func TestParsePropfind_SkipsNon200(t *testing.T) {
	records, err := ParsePropfind(strings.NewReader(sampleMultistatus))
	require.NoError(t, err)
	for _, r := range records {
		assert.NotContains(t, r.RelativePath, "missing")
	}
}

func TestParsePropfind_MalformedXML(t *testing.T) {
	_, err := ParsePropfind(strings.NewReader("<d:multistatus><d:response>"))
	assert.Error(t, err)
}

func TestParsePropfind_Empty(t *testing.T) {
	records, err := ParsePropfind(strings.NewReader(`<d:multistatus xmlns:d="DAV:"></d:multistatus>`))
	require.NoError(t, err)
	assert.Empty(t, records)
}
