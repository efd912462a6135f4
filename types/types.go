// Package types contains the shared types for emailaddr.
// This package does not import anything from other emailaddr packages
// to avoid circular imports.
package types

import "strings"

// Hostname is the outcome of parsing a domain string.
type Hostname struct {
	Source         string `json:"source" xml:"source"`
	Protocol       string `json:"protocol,omitempty" xml:"protocol,omitempty"`
	Host           string `json:"host,omitempty" xml:"host,omitempty"`
	Domain         string `json:"domain,omitempty" xml:"domain,omitempty"`
	TopLevelDomain string `json:"tld,omitempty" xml:"tld,omitempty"`
	Port           *int   `json:"port,omitempty" xml:"port,omitempty"`
	IsValid        bool   `json:"validHostname" xml:"validHostname,attr"`
}

// FQDN reconstructs the fully qualified domain name from the host,
// domain and top-level domain. Protocol and port are not part of it.
func (h Hostname) FQDN() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{h.Host, h.Domain, h.TopLevelDomain} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Clone returns a copy that shares no memory with h.
func (h Hostname) Clone() Hostname {
	if h.Port != nil {
		p := *h.Port
		h.Port = &p
	}
	return h
}
