package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fieldMessages tag -> 提示模板, %[1]s 为字段名, %[2]s 为参数
var fieldMessages = map[string]string{
	"required": "field '%[1]s' is required",
	"max":      "field '%[1]s' must be at most %[2]s characters",
	"min":      "field '%[1]s' must be at least %[2]s",
	"oneof":    "field '%[1]s' must be one of: %[2]s",
	"email":    "field '%[1]s' must be a valid email address",
	"url":      "field '%[1]s' must be a valid URL",
}

// FormatValidationError 格式化绑定错误, 覆盖 JSON 请求体和 URI 参数
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) {
		return "invalid JSON format"
	}

	// URI 中的 id 不是数字
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Sprintf("'%s' is not a valid number", numErr.Num)
	}

	return err.Error()
}

// formatFieldError 格式化单个字段的验证错误
func formatFieldError(e validator.FieldError) string {
	if tpl, ok := fieldMessages[e.Tag()]; ok {
		return fmt.Sprintf(tpl, e.Field(), e.Param())
	}
	return fmt.Sprintf("field '%s' validation failed on '%s' tag", e.Field(), e.Tag())
}
