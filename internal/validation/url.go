package validation

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL       = errors.New("URL cannot be empty")
	ErrUnsupportedURL = errors.New("URL must use http or https")
	ErrBlockedHost    = errors.New("host not permitted")
)

// FeedURLValidator checks user-entered feed URLs and reduces them to one
// canonical form, which the subscription store uses as its key.
type FeedURLValidator struct {
	AllowLocalhost  bool
	AllowPrivateIPs bool
	MaxLength       int
}

// NewFeedURLValidator rejects loopback and private-network hosts.
func NewFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{
		MaxLength: 2048,
	}
}

// NewPermissiveFeedURLValidator only normalizes; any host is accepted.
func NewPermissiveFeedURLValidator() *FeedURLValidator {
	return &FeedURLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize returns the canonical form of input. A missing scheme
// defaults to https. The host is lowercased, default ports and the fragment
// are dropped; path and query are kept as given.
func (v *FeedURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", ErrEmptyURL
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrUnsupportedURL
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("URL must have a hostname")
	}

	host := strings.ToLower(u.Hostname())
	if err := v.checkHost(host); err != nil {
		return "", err
	}

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

func (v *FeedURLValidator) checkHost(host string) error {
	if !v.AllowLocalhost && isLocalhost(host) {
		return fmt.Errorf("%w: %s is local", ErrBlockedHost, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		if !v.AllowLocalhost && addr.IsLoopback() {
			return fmt.Errorf("%w: %s is local", ErrBlockedHost, host)
		}
		if !v.AllowPrivateIPs && isPrivateAddr(addr) {
			return fmt.Errorf("%w: %s is a private address", ErrBlockedHost, host)
		}
		if addr.IsUnspecified() || addr.IsMulticast() {
			return fmt.Errorf("%w: %s", ErrBlockedHost, host)
		}
	}
	return nil
}

func isLocalhost(host string) bool {
	return host == "localhost" || strings.HasSuffix(host, ".localhost")
}

func isPrivateAddr(addr netip.Addr) bool {
	return addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsLoopback()
}
