package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// APIURLValidator checks the configured search API root before any request
// is built from it.
type APIURLValidator struct {
	// AllowLocalhost permits loopback hosts (local mirrors, test servers)
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses
	AllowPrivateIPs bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewAPIURLValidator returns a validator that only accepts public hosts.
func NewAPIURLValidator() *APIURLValidator {
	return &APIURLValidator{
		MaxLength: 2048,
	}
}

// NewPermissiveAPIURLValidator accepts loopback and private hosts too.
func NewPermissiveAPIURLValidator() *APIURLValidator {
	return &APIURLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize returns the base URL without trailing slash. A
// missing scheme defaults to https.
func (v *APIURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("API URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("API URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("API URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid API URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("API URL must use http or https protocol")
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("API URL must have a valid hostname")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("API URL must not carry a query or fragment")
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in API URL path")
	}

	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}

	return strings.TrimRight(parsed.String(), "/"), nil
}

func (v *APIURLValidator) validateHost(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("API URL must have a valid hostname")
	}

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() || ip.IsMulticast() {
			return fmt.Errorf("address %s cannot serve requests", hostname)
		}
		if !v.AllowLocalhost && ip.IsLoopback() {
			return fmt.Errorf("localhost URLs are not permitted")
		}
		if !v.AllowPrivateIPs && (ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "::1" ||
		strings.HasPrefix(hostname, "127.") ||
		strings.HasSuffix(hostname, ".localhost")
}
