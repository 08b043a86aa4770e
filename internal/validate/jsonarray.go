package validate

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Generative providers wrap JSON in prose more often than not. The helpers
// here pull the first array out of a raw completion and repair the usual
// damage before unmarshalling.

var (
	errNoArray  = errors.New("no JSON array found in response")
	errBadArray = errors.New("JSON array did not parse")

	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
)

// extractJSONArray returns the substring from the first '[' to the last ']'
// with trailing commas stripped. Surrounding prose is ignored.
func extractJSONArray(response string) (string, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return "", errNoArray
	}

	raw := response[start : end+1]
	raw = trailingCommaArray.ReplaceAllString(raw, "]")
	raw = trailingCommaObject.ReplaceAllString(raw, "}")
	return raw, nil
}

// decodeArray extracts and unmarshals the first JSON array in the response
// into out. Any failure means the whole response is unusable; callers treat
// that as provider failure and fail open.
func decodeArray(response string, out any) error {
	raw, err := extractJSONArray(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.Join(errBadArray, err)
	}
	return nil
}
