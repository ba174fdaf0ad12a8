package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Configuration is the full JSON document describing one storefront.
// Values are JSON-shaped: map[string]any, []any, string, float64, bool or nil.
type Configuration map[string]any

// PartialConfiguration carries a subset of top-level keys to merge into a Configuration.
type PartialConfiguration = Configuration

const (
	KeyBrand      = "brand"
	KeyTheme      = "theme"
	KeyCategories = "categories"
	KeyProducts   = "products"
	KeyDelivery   = "delivery"
	KeyContact    = "contact"
	KeySocial     = "social"
	KeyPricing    = "pricing"
	KeyPromoCodes = "promoCodes"
)

// ParseConfiguration decodes raw JSON into a Configuration. The document must be a JSON object.
func ParseConfiguration(data []byte) (Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("failed to decode configuration: document is null")
	}
	return cfg, nil
}

// NormalizeConfiguration converts any JSON-encodable value (driver documents,
// typed structs) into the plain map/slice form used everywhere else.
func NormalizeConfiguration(v any) (Configuration, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return ParseConfiguration(data)
}

// Clone returns a deep copy so callers can never mutate a stored tree.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	return cloneMap(c)
}

// Object returns the object stored at key, or nil when absent or not an object.
func (c Configuration) Object(key string) map[string]any {
	m, _ := c[key].(map[string]any)
	return m
}

// Array returns the array stored at key, or nil when absent or not an array.
func (c Configuration) Array(key string) []any {
	a, _ := c[key].([]any)
	return a
}

func (c Configuration) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Fingerprint returns the SHA-256 of the canonical serialization (sorted keys).
// Two configurations with equal content always share a fingerprint.
func Fingerprint(cfg Configuration) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to serialize configuration: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CloneValue deep-copies a JSON-shaped value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Configuration:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}
