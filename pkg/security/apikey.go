package security

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	validKeyPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	unsafeKeyPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// APIKeyValidator provides secure validation and handling of API keys
type APIKeyValidator struct {
	minLength int
	maxLength int
}

// NewAPIKeyValidator creates a new API key validator with reasonable defaults
func NewAPIKeyValidator() *APIKeyValidator {
	return &APIKeyValidator{
		minLength: 8,
		maxLength: 128,
	}
}

// ValidateAPIKey validates API key format and length
func (v *APIKeyValidator) ValidateAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check length constraints
	if len(apiKey) < v.minLength || len(apiKey) > v.maxLength {
		return false
	}

	return validKeyPattern.MatchString(apiKey)
}

// SanitizeAPIKey removes dangerous characters and trims whitespace
func (v *APIKeyValidator) SanitizeAPIKey(apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)

	// Keep only alphanumeric, hyphens, and underscores which are safe in a query string
	return unsafeKeyPattern.ReplaceAllString(apiKey, "")
}

// MaskAPIKey creates a masked version for logging (shows only first/last few chars)
func (v *APIKeyValidator) MaskAPIKey(apiKey string) string {
	if len(apiKey) == 0 {
		return "[empty]"
	}

	if len(apiKey) <= 8 {
		return "[***]"
	}

	// Show first 3 and last 3 characters
	return apiKey[:3] + "..." + apiKey[len(apiKey)-3:]
}

// MaskURL replaces the value of the keyParam query parameter with its masked form
// so provider URLs can be logged. Unparseable input is returned fully masked.
func (v *APIKeyValidator) MaskURL(rawURL, keyParam string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "[unparseable url]"
	}
	q := u.Query()
	if key := q.Get(keyParam); key != "" {
		q.Set(keyParam, v.MaskAPIKey(key))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// IsValidOMDbKey validates the OMDb key format: 8 alphanumeric characters.
func (v *APIKeyValidator) IsValidOMDbKey(apiKey string) bool {
	if !v.ValidateAPIKey(apiKey) {
		return false
	}
	return len(apiKey) == 8 && !strings.ContainsAny(apiKey, "-_")
}
