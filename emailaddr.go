// Package emailaddr validates and normalizes email addresses.
//
// An address is split once on "@" into a user part and a domain part.
// The domain is handed to a hostname parser (package hostname by default)
// and the address is valid only when the parser accepts the domain and
// its reconstructed FQDN equals the domain as written.
//
// Basic usage:
//
//	c := emailaddr.Validate("User@Example.COM")
//	fmt.Println(c.Valid, c.NormalizedEmailAddress) // true user@example.com
//
// In conditionals:
//
//	if c, ok := emailaddr.TryValidate(input); ok {
//	    store(c.NormalizedEmailAddress)
//	}
//
// Bulk validation with a parse cache and typo suggestions:
//
//	v := emailaddr.New().
//	    WithCache().
//	    WithTypoSuggestions()
//	results, err := v.ValidateMany(ctx, addresses)
package emailaddr

import "github.com/optimode/emailaddr/types"

// Hostname is a re-export from the types package so that consumers
// don't need to import the types package directly.
type Hostname = types.Hostname

// HostnameParser is the domain validation collaborator.
// Parse may return nil; the address is then reported invalid.
type HostnameParser interface {
	Parse(domain string) *types.Hostname
}
