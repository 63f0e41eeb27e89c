package webdav

// Depth header values for PROPFIND requests.
const (
	DepthZero     = "0"
	DepthOne      = "1"
	DepthInfinity = "infinity"
)

// propfindBody is the fixed request body: displayname, getcontentlength,
// getlastmodified, getcontenttype, resourcetype. Bit-exact per the external
// interface contract; every PROPFIND this client issues sends this body
// regardless of depth.
const propfindBody = `<?xml version="1.0" encoding="UTF-8"?>
<d:propfind xmlns:d="DAV:">
  <d:prop>
    <d:displayname/>
    <d:getcontentlength/>
    <d:getlastmodified/>
    <d:getcontenttype/>
    <d:resourcetype/>
  </d:prop>
</d:propfind>
`
