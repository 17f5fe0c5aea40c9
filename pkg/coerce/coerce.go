// Package coerce converts loosely typed values decoded from JSON, YAML or
// user input into concrete Go types with explicit fallbacks.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number returns value as a finite float64. Missing, non-numeric and
// non-finite values yield fallback.
func Number(value interface{}, fallback float64) float64 {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return fallback
		}
		n = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return fallback
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fallback
		}
		n = parsed
	default:
		return fallback
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return n
}

// String returns value when it is a non-empty string after trimming.
func String(value interface{}) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// Bool interprets common truthy encodings; anything else is false.
func Bool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}

// Object returns value as a string-keyed map. Maps with non-string keys, as
// some YAML decoders produce, are converted; anything else is rejected.
func Object(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = item
		}
		return out, true
	}
	return nil, false
}

// List returns value when it is a decoded array.
func List(value interface{}) ([]interface{}, bool) {
	list, ok := value.([]interface{})
	return list, ok
}

// Field returns object[key], falling back to a case-insensitive key match
// because viper lowercases every key it loads.
func Field(object map[string]interface{}, key string) interface{} {
	if value, ok := object[key]; ok {
		return value
	}
	for k, value := range object {
		if strings.EqualFold(k, key) {
			return value
		}
	}
	return nil
}
