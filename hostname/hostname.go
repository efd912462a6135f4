package hostname

import (
	"strconv"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/optimode/emailaddr/types"
)

const (
	maxNameLength  = 253
	maxLabelLength = 63
)

// Options configures a Parser.
type Options struct {
	// RequireKnownTLD when true rejects names whose suffix is not on the
	// public suffix list. Default: true
	RequireKnownTLD bool
	// AllowProtocol when false rejects names with a "scheme://" prefix. Default: true
	AllowProtocol bool
	// AllowPort when false rejects names with a ":port" suffix. Default: true
	AllowPort bool
}

// DefaultOptions returns the options used by the package-level Parse.
func DefaultOptions() Options {
	return Options{
		RequireKnownTLD: true,
		AllowProtocol:   true,
		AllowPort:       true,
	}
}

// Parser parses domain strings into types.Hostname values.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	opts Options
}

// NewParser returns a Parser using opts.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

var defaultParser = NewParser(DefaultOptions())

// Parse parses domain with DefaultOptions.
func Parse(domain string) *types.Hostname {
	return defaultParser.Parse(domain)
}

// Parse never returns nil. Fields are populated on a best-effort basis
// even when the result is invalid.
func (p *Parser) Parse(domain string) *types.Hostname {
	h := &types.Hostname{Source: domain}

	name := strings.ToLower(strings.TrimSpace(domain))
	if name == "" {
		return h
	}
	valid := true

	if i := strings.Index(name, "://"); i >= 0 {
		h.Protocol = name[:i]
		name = name[i+3:]
		if !p.opts.AllowProtocol || !validScheme(h.Protocol) {
			valid = false
		}
	}

	// Anything after a path, query or fragment delimiter is not a hostname.
	if i := strings.IndexAny(name, "/?#"); i >= 0 {
		name = name[:i]
		valid = false
	}

	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		port, ok := parsePort(name[i+1:])
		name = name[:i]
		if !ok {
			valid = false
		} else {
			h.Port = &port
			if !p.opts.AllowPort {
				valid = false
			}
		}
	}

	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return h
	}

	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return h
	}
	labels := strings.Split(name, ".")
	asciiLabels := strings.Split(ascii, ".")
	if len(labels) != len(asciiLabels) {
		// IDNA mapped a separator (e.g. U+3002), the label forms no longer line up
		return h
	}
	// Stored labels come from the converted form, so characters IDNA maps
	// or drops (soft hyphen, fullwidth letters) no longer match the input.
	for i, label := range asciiLabels {
		if isASCII(labels[i]) {
			labels[i] = label
			continue
		}
		u, err := idna.Display.ToUnicode(label)
		if err != nil {
			u = label
		}
		labels[i] = u
	}

	if !validName(ascii, asciiLabels) {
		valid = false
	}

	suffix, known := icannSuffix(ascii)
	if !known && p.opts.RequireKnownTLD {
		valid = false
	}
	n := strings.Count(suffix, ".") + 1
	if n > len(labels) {
		n = len(labels)
	}
	h.TopLevelDomain = strings.Join(labels[len(labels)-n:], ".")
	if allDigits(asciiLabels[len(asciiLabels)-1]) {
		valid = false
	}

	if len(labels) == n {
		// The name is a public suffix, there is no registrable label
		h.IsValid = false
		return h
	}
	h.Domain = labels[len(labels)-n-1]
	h.Host = strings.Join(labels[:len(labels)-n-1], ".")

	h.IsValid = valid
	return h
}

// validName checks the ASCII (Punycode) form of a name: overall length,
// at least two labels, and each label per validLabel.
func validName(ascii string, labels []string) bool {
	if len(ascii) > maxNameLength || len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !validLabel(label) {
			return false
		}
	}
	return true
}

func validLabel(label string) bool {
	if label == "" || len(label) > maxLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		ch := label[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' {
			continue
		}
		return false
	}
	return true
}

// icannSuffix returns the ICANN public suffix of name. Entries from the
// private section of the list (github.io, blogspot.co.uk) are skipped so
// their owners' names split like any other registrable domain. known is
// false when the last label is not on the list at all.
func icannSuffix(name string) (suffix string, known bool) {
	suffix, known = publicsuffix.PublicSuffix(name)
	for !known {
		i := strings.IndexByte(suffix, '.')
		if i < 0 {
			return suffix, false
		}
		suffix, known = publicsuffix.PublicSuffix(suffix[i+1:])
	}
	return suffix, true
}

// parsePort accepts 1..65535 written as plain ASCII digits without sign
// or leading zeros.
func parsePort(s string) (int, bool) {
	if !allDigits(s) || s[0] == '0' || len(s) > 5 {
		return 0, false
	}
	port, err := strconv.Atoi(s)
	if err != nil || port > 65535 {
		return 0, false
	}
	return port, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// validScheme reports whether s is an RFC 3986 scheme.
func validScheme(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		ch := s[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '+' || ch == '-' || ch == '.' {
			continue
		}
		return false
	}
	return true
}

func allDigits(s string) bool {
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
