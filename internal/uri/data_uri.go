package uri

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DataURI is a parsed RFC 2397 data URI
type DataURI struct {
	MimeType    string
	Base64      bool
	DecodedData []byte
}

// IsDataURI reports whether the URI uses the data: scheme
func IsDataURI(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "data:")
}

// ParseDataURI parses a data URI of the form data:[<mediatype>][;base64],<data>
func ParseDataURI(uri string) (*DataURI, error) {
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("invalid data URI: missing data: prefix")
	}

	header, payload, found := strings.Cut(uri[len("data:"):], ",")
	if !found {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}

	parsed := &DataURI{MimeType: "text/plain"}
	params := strings.Split(header, ";")
	if mt := strings.TrimSpace(params[0]); mt != "" {
		parsed.MimeType = strings.ToLower(mt)
	}
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			parsed.Base64 = true
		}
	}

	if parsed.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some contracts emit unpadded payloads
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64: %w", err)
			}
		}
		parsed.DecodedData = decoded
		return parsed, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape data: %w", err)
	}
	parsed.DecodedData = []byte(unescaped)

	return parsed, nil
}
