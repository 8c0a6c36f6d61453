// Package uri parses and renders RFC 3986 URIs by hand, against the
// grammar itself rather than through net/url: net/url does not keep
// the brackets on an IP-literal host and does not guarantee the exact
// round trip this package's callers depend on, including the master's
// own advertised address and any address a leader-redirect carries.
// Every optional component — userinfo, host, port, query, fragment —
// is a pointer so "absent" and "present but empty" stay distinct,
// since both occur in valid URIs: compare "file:/absolute/path" (no
// authority at all) against "file:///host/and/path" (an authority
// with an empty host).
package uri

import (
	"fmt"
	"strconv"
	"strings"
)

// URI is a parsed URI: Scheme and Path are always present (Path may be
// the empty string); User, Host, Port, Query, and Fragment are each
// nil when absent. Host keeps the surrounding brackets of an IPv6 or
// IPvFuture literal verbatim, rather than stripping and re-adding them.
type URI struct {
	Scheme   string
	User     *string
	Host     *string
	Port     *string
	Path     string
	Query    *string
	Fragment *string
}

// Parse decodes s into a URI. Parse fails only when s has no scheme or
// an invalid one, or when an authority's port is non-empty and is not
// all-digit or falls outside 0..65535; every other component is
// optional and its absence is never an error.
func Parse(s string) (URI, error) {
	colon := strings.IndexByte(s, ':')
	if colon <= 0 {
		return URI{}, fmt.Errorf("uri: %q has no scheme", s)
	}
	scheme := s[:colon]
	if !validScheme(scheme) {
		return URI{}, fmt.Errorf("uri: %q is not a valid scheme", scheme)
	}

	u := URI{Scheme: scheme}
	rest := s[colon+1:]

	var remaining string
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		var authority string
		if end == -1 {
			authority, remaining = rest, ""
		} else {
			authority, remaining = rest[:end], rest[end:]
		}
		if err := parseAuthority(authority, &u); err != nil {
			return URI{}, err
		}
	} else {
		remaining = rest
	}

	u.Path, u.Query, u.Fragment = splitPathQueryFragment(remaining)
	return u, nil
}

// validScheme reports whether s is a letter followed by letters,
// digits, "+", "-", or ".".
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// parseAuthority splits authority into user, host, and port, writing
// the result into u. An empty authority (a bare "///") yields a
// present-but-empty host.
func parseAuthority(authority string, u *URI) error {
	hostport := authority
	if at := strings.IndexByte(authority, '@'); at != -1 {
		user := authority[:at]
		u.User = &user
		hostport = authority[at+1:]
	}

	if strings.HasPrefix(hostport, "[") {
		closeIdx := strings.IndexByte(hostport, ']')
		if closeIdx == -1 {
			return fmt.Errorf("uri: %q is missing the closing ']' of an IP-literal host", authority)
		}
		host := hostport[:closeIdx+1]
		u.Host = &host

		after := hostport[closeIdx+1:]
		if after == "" {
			return nil
		}
		if !strings.HasPrefix(after, ":") {
			return fmt.Errorf("uri: %q has trailing characters after an IP-literal host", authority)
		}
		return setPort(u, after[1:])
	}

	parts := strings.Split(hostport, ":")
	switch len(parts) {
	case 1:
		u.Host = &parts[0]
		return nil
	case 2:
		u.Host = &parts[0]
		return setPort(u, parts[1])
	default:
		return fmt.Errorf("uri: %q names too many ports", authority)
	}
}

// setPort validates and records a port string. An empty port string (a
// bare trailing colon) is recorded as a present but empty port, so
// String reproduces the colon.
func setPort(u *URI, port string) error {
	if port == "" {
		u.Port = &port
		return nil
	}
	if !isDigits(port) {
		return fmt.Errorf("uri: %q is not a valid port", port)
	}
	if n, err := strconv.Atoi(port); err != nil || n > 65535 {
		return fmt.Errorf("uri: port %q is out of range", port)
	}
	u.Port = &port
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitPathQueryFragment splits remaining into its path, query, and
// fragment parts. Query and fragment are distinguished only by
// whichever delimiter, '?' or '#', occurs first: a '?' that occurs
// after a '#' is just text inside the fragment, never a new query.
func splitPathQueryFragment(remaining string) (path string, query, fragment *string) {
	i := strings.IndexAny(remaining, "?#")
	if i == -1 {
		return remaining, nil, nil
	}
	path = remaining[:i]
	if remaining[i] == '#' {
		f := remaining[i+1:]
		return path, nil, &f
	}

	tail := remaining[i+1:]
	if j := strings.IndexByte(tail, '#'); j != -1 {
		q, f := tail[:j], tail[j+1:]
		return path, &q, &f
	}
	return path, &tail, nil
}

// String renders u back to its canonical textual form. For every s
// Parse accepts, Parse(s).String() == s.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteByte(':')
	if u.Host != nil {
		b.WriteString("//")
		if u.User != nil {
			b.WriteString(*u.User)
			b.WriteByte('@')
		}
		b.WriteString(*u.Host)
		if u.Port != nil {
			b.WriteByte(':')
			b.WriteString(*u.Port)
		}
	}
	b.WriteString(u.Path)
	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(*u.Query)
	}
	if u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(*u.Fragment)
	}
	return b.String()
}

// PortNumber parses Port as an integer, returning ok=false if no port
// is present.
func (u URI) PortNumber() (n int, ok bool) {
	if u.Port == nil {
		return 0, false
	}
	v, err := strconv.Atoi(*u.Port)
	if err != nil {
		return 0, false
	}
	return v, true
}
