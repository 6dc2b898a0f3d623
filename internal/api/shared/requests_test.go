package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{
			name:        "valid json",
			requestBody: `{"name": "test", "age": 30}`,
		},
		{
			name:        "invalid json",
			requestBody: `{"name": "test", "age": 30,}`, // trailing comma
			wantErr:     true,
			errContains: "invalid character",
		},
		{
			name:        "empty body",
			requestBody: "",
			wantErr:     true,
			errContains: "EOF",
		},
		{
			name:        "unknown field",
			requestBody: `{"name": "test", "colour": "blue"}`,
			wantErr:     true,
			errContains: "unknown field",
		},
		{
			name:        "trailing object",
			requestBody: `{"name": "a"}{"name": "b"}`,
			wantErr:     true,
			errContains: "single JSON object",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.requestBody))

			var target decodeTarget
			err := DecodeJSON(req, &target)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test", target.Name)
			assert.Equal(t, 30, target.Age)
		})
	}
}

type validatedRequest struct {
	Title  string `validate:"required,notblank,max=5"`
	Status string `validate:"omitempty,oneof=A B"`
}

type selfValidating struct{}

var errSelf = errors.New("self validation")

func (selfValidating) Validate() error { return errSelf }

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&validatedRequest{Title: "ok"}))
	assert.NoError(t, ValidateRequest(&validatedRequest{Title: "ok", Status: "B"}))

	for _, req := range []*validatedRequest{
		{Title: ""},
		{Title: "   "},
		{Title: "toolong"},
		{Title: "ok", Status: "C"},
	} {
		err := ValidateRequest(req)
		var vErrs validator.ValidationErrors
		assert.True(t, errors.As(err, &vErrs), "title=%q status=%q", req.Title, req.Status)
	}

	assert.ErrorIs(t, ValidateRequest(selfValidating{}), errSelf)
}
