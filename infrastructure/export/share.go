package export

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/exchange"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

const (
	// SharePath is the route that renders an ephemeral shared map.
	SharePath = "/map/temp"
	// ShareParam carries the encoded document.
	ShareParam = "data"
)

// ToShareableLink encodes the full document as a query parameter on
// SharePath under baseURL. A positive maxBytes limits the encoded link
// length.
func ToShareableLink(m *aggregates.MindMap, baseURL string, maxBytes int) (string, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", pkgerrors.NewValidationError("share base URL must be absolute").WithCause(err)
	}

	payload, err := json.Marshal(exchange.FromMindMap(m))
	if err != nil {
		return "", pkgerrors.NewExportFailureError("share link", err)
	}

	link := *base
	link.Path = path.Join("/", base.Path, SharePath)
	link.RawQuery = ShareParam + "=" + encodeComponent(string(payload))
	link.Fragment = ""

	out := link.String()
	if maxBytes > 0 && len(out) > maxBytes {
		return "", pkgerrors.NewExportFailureError("share link", nil).
			WithDetail("length", len(out)).
			WithDetail("max_length", maxBytes)
	}
	return out, nil
}

// encodeComponent escapes s so that decodeURIComponent restores it. Query
// escaping alone turns spaces into '+', which that decoder keeps.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SharePayload extracts the raw document bytes from a share link or from
// its bare query string.
func SharePayload(link string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, pkgerrors.NewMalformedInputError("share link is not a valid URL", err)
	}
	data := u.Query().Get(ShareParam)
	if data == "" {
		return nil, pkgerrors.NewMalformedInputError("share link has no data parameter", nil)
	}
	return []byte(data), nil
}
