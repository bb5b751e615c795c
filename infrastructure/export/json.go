package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ndstyle/mindflow2/domain/core/aggregates"
	"github.com/ndstyle/mindflow2/domain/exchange"
	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// ToJSON renders the exchange document pretty-printed with two-space
// indentation. Field order is fixed by the document types.
func ToJSON(m *aggregates.MindMap) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exchange.FromMindMap(m)); err != nil {
		return "", pkgerrors.NewExportFailureError("json", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Filename returns the download name used for an export, e.g.
// mindmap-1700000000000.svg.
func Filename(format string, at time.Time) string {
	return fmt.Sprintf("mindmap-%d.%s", at.UnixMilli(), format)
}
