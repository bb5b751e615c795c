package exchange

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// Untrusted holds decoded JSON from an unreliable source (LLM output, a user
// import, a share link) that has not been through normalization. The only
// way to turn it into a mind map is the normalizer.
type Untrusted struct {
	value interface{}
}

// ParseUntrusted decodes raw bytes. Only a JSON syntax error is rejected,
// with a MALFORMED_INPUT error; any well-formed value is accepted.
func ParseUntrusted(data []byte) (Untrusted, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Untrusted{}, pkgerrors.NewMalformedInputError("input is empty", nil)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return Untrusted{}, pkgerrors.NewMalformedInputError("input is not valid JSON", err)
	}
	return Untrusted{value: v}, nil
}

// UntrustedValue wraps an already decoded value, e.g. one nested inside a
// larger request body.
func UntrustedValue(v interface{}) Untrusted {
	return Untrusted{value: v}
}

// Object returns the top level value as a JSON object, or nil.
func (u Untrusted) Object() map[string]interface{} {
	obj, _ := u.value.(map[string]interface{})
	return obj
}
