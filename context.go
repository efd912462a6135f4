package emailaddr

import (
	"encoding/xml"

	"github.com/optimode/emailaddr/types"
)

// Context is the outcome of validating one email address.
// The Valid field is true only if the address has exactly one "@", a
// non-empty user part, and a domain the hostname parser accepts and
// reconstructs unchanged.
type Context struct {
	XMLName xml.Name `json:"-" xml:"emailAddress"`

	FullyQualifiedDomain   string `json:"fqdn" xml:"fqdn,attr"`
	NormalizedEmailAddress string `json:"resultEmail" xml:"resultEmail"`
	Valid                  bool   `json:"validEmail" xml:"validEmail,attr"`
	SourceEmailAddress     string `json:"sourceEmail" xml:"sourceEmail"`
	UserPart               string `json:"userPart" xml:"userPart"`
	Suggestion             string `json:"suggestion,omitempty" xml:"suggestion,omitempty"`

	types.Hostname
}

// MergeHostname copies the hostname fields of h into c and returns c.
func (c *Context) MergeHostname(h types.Hostname) *Context {
	c.Source = h.Source
	c.Protocol = h.Protocol
	c.Host = h.Host
	c.Domain = h.Domain
	c.TopLevelDomain = h.TopLevelDomain
	c.Port = nil
	if h.Port != nil {
		p := *h.Port
		c.Port = &p
	}
	c.IsValid = h.IsValid
	c.FullyQualifiedDomain = h.FQDN()
	return c
}

// String returns the normalized address.
func (c Context) String() string {
	return c.NormalizedEmailAddress
}

// ValidCount returns how many of the results are valid.
func ValidCount(results []Context) int {
	n := 0
	for _, r := range results {
		if r.Valid {
			n++
		}
	}
	return n
}
