package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

// readStringField reads the request body and extracts a required top-level string field.
// field must be a plain key (no gjson path syntax).
// Any other JSON type under that field is rejected rather than coerced.
func readStringField(c echo.Context, field string) (string, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}

	return stringField(body, field)
}

func stringField(body []byte, field string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("request body must be valid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", errors.New("request body must be a JSON object")
	}

	value := root.Get(field)
	if !value.Exists() {
		return "", fmt.Errorf("%s is required", field)
	}
	if value.Type != gjson.String {
		return "", fmt.Errorf("%s must be a string", field)
	}

	// text must round-trip through every backend unchanged
	str := value.String()
	if !utf8.ValidString(str) {
		return "", fmt.Errorf("%s must be valid UTF-8", field)
	}
	if strings.ContainsRune(str, 0) {
		return "", fmt.Errorf("%s must not contain NUL characters", field)
	}

	return str, nil
}
