package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

type sampleRequest struct {
	Title  string `json:"title" validate:"notblank,max=10"`
	Format string `json:"format" validate:"omitempty,oneof=json svg png"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr string
	}{
		{"valid", sampleRequest{Title: "ok", Format: "svg"}, ""},
		{"blank title", sampleRequest{Title: "   "}, "title is required"},
		{"too long", sampleRequest{Title: "this is far too long"}, "title must be at most 10 characters"},
		{"bad format", sampleRequest{Title: "ok", Format: "pdf"}, "format must be one of: json svg png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
