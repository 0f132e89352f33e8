package utils

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type keyRequest struct {
	Title string `validate:"required,max=5"`
	Mode  string `validate:"omitempty,oneof=github get"`
	URL   string `validate:"omitempty,url"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(keyRequest{Title: "too-long-title", Mode: "post", URL: "nope"})
	assert.Equal(t,
		"field 'Title' must be at most 5 characters; field 'Mode' must be one of: github get; field 'URL' must be a valid URL",
		FormatValidationError(err))

	err = v.Struct(keyRequest{})
	assert.Equal(t, "field 'Title' is required", FormatValidationError(err))
}

func TestFormatDecodeErrors(t *testing.T) {
	var dst struct {
		Status int8 `json:"status"`
	}
	err := json.Unmarshal([]byte(`{"status":"locked"}`), &dst)
	assert.Equal(t, "field 'status' should be int8", FormatValidationError(err))

	err = json.Unmarshal([]byte(`{`), &dst)
	assert.Equal(t, "invalid JSON format", FormatValidationError(err))

	_, err = strconv.ParseInt("abc", 10, 64)
	assert.Equal(t, "'abc' is not a valid number", FormatValidationError(err))

	assert.Equal(t, "boom", FormatValidationError(errors.New("boom")))
	assert.Empty(t, FormatValidationError(nil))
}
