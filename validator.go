package emailaddr

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/optimode/emailaddr/hostname"
	"github.com/optimode/emailaddr/internal/hostcache"
	"github.com/optimode/emailaddr/internal/suggest"
)

// Validator is the main fluent builder struct.
// Instantiate with New() or NewWithParser(). Once configured, a Validator
// is safe for concurrent use.
type Validator struct {
	base      HostnameParser
	cacheOpts *CacheOptions
	cache     *hostcache.Cache
	suggester *suggest.Suggester
	err       error // configuration error, returned by Err() and ValidateMany()
}

// New creates a Validator backed by the hostname package with its default options.
func New() *Validator {
	return NewWithParser(nil)
}

// NewWithParser creates a Validator that delegates domain checks to p.
// A nil p falls back to the hostname package.
func NewWithParser(p HostnameParser) *Validator {
	if p == nil {
		p = hostname.NewParser(hostname.DefaultOptions())
	}
	return &Validator{base: p}
}

// WithHostnameOptions replaces the hostname parser with one from the
// hostname package configured by opts.
func (v *Validator) WithHostnameOptions(opts hostname.Options) *Validator {
	v.base = hostname.NewParser(opts)
	v.rebuildCache()
	return v
}

// WithCache memoizes hostname parse results per domain.
// Optionally overrides the default CacheOptions.
// Useful for bulk validation where many addresses share a domain.
func (v *Validator) WithCache(opts ...CacheOptions) *Validator {
	o := defaultCacheOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.TTL < 0 || o.MaxEntries < 0 {
		v.err = ErrInvalidCacheOptions
		return v
	}
	v.cacheOpts = &o
	v.rebuildCache()
	return v
}

// WithTypoSuggestions fills Context.Suggestion when the domain is close to,
// but not equal to, a well-known provider. It never changes Context.Valid.
func (v *Validator) WithTypoSuggestions(opts ...TypoOptions) *Validator {
	o := defaultTypoOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Threshold < 0 {
		v.err = ErrInvalidTypoOptions
		return v
	}
	v.suggester = suggest.New(o.Threshold, o.Providers)
	return v
}

// Err returns the first configuration error recorded by a With* call.
func (v *Validator) Err() error {
	return v.err
}

func (v *Validator) rebuildCache() {
	if v.cacheOpts == nil {
		return
	}
	v.cache = hostcache.New(v.base, v.cacheOpts.TTL, v.cacheOpts.MaxEntries)
}

func (v *Validator) parser() HostnameParser {
	if v.cache != nil {
		return v.cache
	}
	return v.base
}

// Validate validates a single address. It never fails: malformed input
// is reported through Context.Valid. Configuration errors are not reported
// here, see Err.
func (v *Validator) Validate(email string) Context {
	c := Context{SourceEmailAddress: email}

	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return c
	}
	c.NormalizedEmailAddress = normalized

	parts := strings.Split(normalized, "@")
	if len(parts) != 2 {
		return c
	}
	c.UserPart = parts[0]
	domain := strings.ToLower(strings.TrimSpace(parts[1]))

	if v.suggester != nil {
		c.Suggestion = v.suggester.Closest(domain)
	}

	h := v.parser().Parse(domain)
	if h == nil {
		return c
	}
	c.MergeHostname(*h)

	// The parser must reproduce the domain exactly; a trailing dot,
	// port or protocol in the domain part fails this comparison.
	c.Valid = c.UserPart != "" && h.IsValid && h.FQDN() == domain
	return c
}

// TryValidate is Validate for use in conditionals. Input that is empty or
// has no "@" is rejected without consulting the hostname parser, and the
// returned Context is nil.
func (v *Validator) TryValidate(email string) (*Context, bool) {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return nil, false
	}
	c := v.Validate(email)
	return &c, c.Valid
}

// ValidateMany validates multiple addresses concurrently.
// The result order matches the input slice order.
// Addresses are sorted by domain internally so that a parse cache
// (see WithCache) sees repeated domains back to back.
// If ctx is cancelled, the addresses not yet validated are left as zero
// Contexts and ctx.Err() is returned.
func (v *Validator) ValidateMany(ctx context.Context, emails []string, opts ...ConcurrencyOptions) ([]Context, error) {
	if v.err != nil {
		return nil, v.err
	}

	workers := 5
	if len(opts) > 0 && opts[0].Workers > 0 {
		workers = opts[0].Workers
	}

	results := make([]Context, len(emails))
	type job struct {
		idx    int
		email  string
		domain string
	}

	// Build and sort jobs by domain for cache locality
	jobSlice := make([]job, len(emails))
	for i, e := range emails {
		domain := ""
		if atIdx := strings.LastIndex(e, "@"); atIdx >= 0 {
			domain = strings.ToLower(strings.TrimSpace(e[atIdx+1:]))
		}
		jobSlice[i] = job{idx: i, email: e, domain: domain}
	}
	sort.SliceStable(jobSlice, func(i, j int) bool {
		return jobSlice[i].domain < jobSlice[j].domain
	})

	bufSize := len(emails)
	if bufSize > 1000 {
		bufSize = 1000
	}
	jobs := make(chan job, bufSize)
	go func() {
		defer close(jobs)
		for _, j := range jobSlice {
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results[j.idx] = v.Validate(j.email)
			}
		}()
	}

	wg.Wait()
	return results, ctx.Err()
}

var defaultValidator = New()

// Validate validates email with the default Validator.
func Validate(email string) Context {
	return defaultValidator.Validate(email)
}

// TryValidate calls TryValidate on the default Validator.
func TryValidate(email string) (*Context, bool) {
	return defaultValidator.TryValidate(email)
}
