package emailaddr_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/emailaddr"
	"github.com/optimode/emailaddr/hostname"
	"github.com/optimode/emailaddr/types"
)

// countingParser wraps the hostname package and records calls.
type countingParser struct {
	calls atomic.Int64
}

func (p *countingParser) Parse(domain string) *types.Hostname {
	p.calls.Add(1)
	return hostname.Parse(domain)
}

// nilParser simulates a collaborator that returns no result.
type nilParser struct{}

func (nilParser) Parse(string) *types.Hostname { return nil }

// fixedParser always returns the same result.
type fixedParser struct {
	h types.Hostname
}

func (p fixedParser) Parse(string) *types.Hostname {
	h := p.h
	return &h
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		wantOK bool
	}{
		{"simple", "user@example.com", true},
		{"mixed case", "User@Example.COM", true},
		{"surrounding spaces", "  user@example.com  ", true},
		{"subdomain", "user@mail.example.co.uk", true},
		{"plus tag", "user+tag@example.com", true},
		{"IDN domain", "user@münchen.de", true},
		{"punycode domain", "user@xn--mnchen-3ya.de", true},

		{"empty", "", false},
		{"whitespace", "   ", false},
		{"no at sign", "not-an-email", false},
		{"two at signs", "a@b@c", false},
		{"empty user part", "@example.com", false},
		{"empty domain", "user@", false},
		{"single label domain", "user@localhost", false},
		{"trailing dot", "user@example.com.", false},
		{"port in domain", "user@example.com:25", false},
		{"protocol in domain", "user@http://example.com", false},
		{"invalid label", "user@exa_mple.com", false},
		{"unknown TLD", "user@example.zzzz", false},
		{"soft hyphen in domain", "user@exa\u00admple.com", false},
		{"fullwidth letter in domain", "user@\uff45xample.com", false},

		{"private suffix owner", "user@dyndns.org", true},
		{"private suffix io", "user@github.io", true},
		{"under private suffix", "user@foo.github.io", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := emailaddr.Validate(tt.email)
			assert.Equal(t, tt.wantOK, c.Valid)
			assert.Equal(t, tt.email, c.SourceEmailAddress)
			if c.Valid {
				assert.NotEmpty(t, c.NormalizedEmailAddress)
				assert.NotEmpty(t, c.UserPart)
				assert.NotEmpty(t, c.FullyQualifiedDomain)
				assert.True(t, c.IsValid)
			}
		})
	}
}

func TestValidate_Scenario(t *testing.T) {
	c := emailaddr.Validate("User@Example.COM")
	assert.True(t, c.Valid)
	assert.Equal(t, "User@Example.COM", c.SourceEmailAddress)
	assert.Equal(t, "user@example.com", c.NormalizedEmailAddress)
	assert.Equal(t, "user", c.UserPart)
	assert.Equal(t, "example.com", c.FullyQualifiedDomain)
	assert.Equal(t, "example.com", c.Source)
	assert.Equal(t, "example", c.Domain)
	assert.Equal(t, "com", c.TopLevelDomain)
	assert.Empty(t, c.Host)
	assert.Nil(t, c.Port)
}

func TestValidate_NoAtSign(t *testing.T) {
	c := emailaddr.Validate("not-an-email")
	assert.False(t, c.Valid)
	assert.Equal(t, "not-an-email", c.NormalizedEmailAddress)
	assert.Empty(t, c.UserPart)
	assert.Empty(t, c.FullyQualifiedDomain)
	assert.Empty(t, c.Source)
}

func TestValidate_Empty(t *testing.T) {
	for _, in := range []string{"", " ", "\t\n"} {
		c := emailaddr.Validate(in)
		assert.False(t, c.Valid)
		assert.Empty(t, c.NormalizedEmailAddress, "input %q", in)
		assert.Equal(t, in, c.SourceEmailAddress)
	}
}

func TestValidate_MultipleAt(t *testing.T) {
	c := emailaddr.Validate("a@b@c")
	assert.False(t, c.Valid)
	assert.Empty(t, c.UserPart)
	assert.Empty(t, c.Domain)
}

func TestValidate_InvalidDomainKeepsFields(t *testing.T) {
	c := emailaddr.Validate("user@example.123")
	assert.False(t, c.Valid)
	assert.False(t, c.IsValid)
	assert.Equal(t, "user", c.UserPart)
	assert.Equal(t, "example.123", c.Source)
	assert.Equal(t, "example", c.Domain)
}

func TestValidate_RoundTripMismatch(t *testing.T) {
	// The parser accepts the host but its FQDN differs from the domain part.
	c := emailaddr.Validate("user@example.com:587")
	assert.False(t, c.Valid)
	assert.True(t, c.IsValid)
	require.NotNil(t, c.Port)
	assert.Equal(t, 587, *c.Port)
	assert.Equal(t, "example.com", c.FullyQualifiedDomain)
}

func TestValidate_MappedDomainMismatch(t *testing.T) {
	c := emailaddr.Validate("user@exa\u00admple.com")
	assert.False(t, c.Valid)
	assert.True(t, c.IsValid)
	assert.Equal(t, "example.com", c.FullyQualifiedDomain)

	c = emailaddr.Validate("user@münchen.de")
	assert.True(t, c.Valid)
	assert.Equal(t, "münchen.de", c.FullyQualifiedDomain)
}

func TestValidate_NormalizationProperty(t *testing.T) {
	inputs := []string{
		"User@Example.COM",
		"  MiXeD@CaSe.Org ",
		"no-at",
		"a@b@c",
		"ÜSER@MÜNCHEN.DE",
	}
	for _, in := range inputs {
		c := emailaddr.Validate(in)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(in)), c.NormalizedEmailAddress)

		// Feeding the normalized form back gives the same verdict
		again := emailaddr.Validate(c.NormalizedEmailAddress)
		assert.Equal(t, c.Valid, again.Valid, "input %q", in)
		assert.Equal(t, c.NormalizedEmailAddress, again.NormalizedEmailAddress)
	}
}

func TestValidate_NilParserResult(t *testing.T) {
	v := emailaddr.NewWithParser(nilParser{})
	var c emailaddr.Context
	assert.NotPanics(t, func() { c = v.Validate("user@example.com") })
	assert.False(t, c.Valid)
	assert.Equal(t, "user", c.UserPart)
	assert.Empty(t, c.FullyQualifiedDomain)
}

func TestValidate_InjectedParser(t *testing.T) {
	v := emailaddr.NewWithParser(fixedParser{h: types.Hostname{
		Domain:         "anything",
		TopLevelDomain: "test",
		IsValid:        true,
	}})

	assert.True(t, v.Validate("user@anything.test").Valid)
	// Parser says valid, but its FQDN is not the domain part
	assert.False(t, v.Validate("user@other.test").Valid)

	v = emailaddr.NewWithParser(fixedParser{h: types.Hostname{
		Domain:         "anything",
		TopLevelDomain: "test",
		IsValid:        false,
	}})
	assert.False(t, v.Validate("user@anything.test").Valid)
}

func TestNewWithParser_NilFallsBack(t *testing.T) {
	v := emailaddr.NewWithParser(nil)
	assert.True(t, v.Validate("user@example.com").Valid)
}

func TestWithHostnameOptions(t *testing.T) {
	v := emailaddr.New().WithHostnameOptions(hostname.Options{
		AllowProtocol: true,
		AllowPort:     true,
	})
	assert.True(t, v.Validate("user@example.zzzz").Valid)
	assert.False(t, emailaddr.Validate("user@example.zzzz").Valid)
}

func TestTryValidate(t *testing.T) {
	c, ok := emailaddr.TryValidate("user@example.com")
	assert.True(t, ok)
	require.NotNil(t, c)
	assert.Equal(t, "user@example.com", c.NormalizedEmailAddress)

	c, ok = emailaddr.TryValidate("user@example.123")
	assert.False(t, ok)
	require.NotNil(t, c, "full validation ran, so a context is returned")
	assert.False(t, c.Valid)
}

func TestTryValidate_FastReject(t *testing.T) {
	p := &countingParser{}
	v := emailaddr.NewWithParser(p)

	for _, in := range []string{"", "   ", "no-at-sign", "plain text"} {
		c, ok := v.TryValidate(in)
		assert.False(t, ok, "input %q", in)
		assert.Nil(t, c, "input %q", in)
	}
	assert.Equal(t, int64(0), p.calls.Load())

	_, ok := v.TryValidate("user@example.com")
	assert.True(t, ok)
	assert.Equal(t, int64(1), p.calls.Load())
}

func TestTryValidate_MultipleAtRunsValidation(t *testing.T) {
	p := &countingParser{}
	v := emailaddr.NewWithParser(p)

	c, ok := v.TryValidate("a@b@c")
	assert.False(t, ok)
	require.NotNil(t, c)
	assert.Equal(t, int64(0), p.calls.Load(), "split fails before the parser is consulted")
}

func TestMergeHostname(t *testing.T) {
	port := 465
	h := types.Hostname{
		Source:         "smtps://mail.example.com:465",
		Protocol:       "smtps",
		Host:           "mail",
		Domain:         "example",
		TopLevelDomain: "com",
		Port:           &port,
		IsValid:        true,
	}

	var c emailaddr.Context
	got := c.MergeHostname(h)
	assert.Same(t, &c, got)
	assert.Equal(t, h.Source, c.Source)
	assert.Equal(t, "smtps", c.Protocol)
	assert.Equal(t, "mail", c.Host)
	assert.Equal(t, "example", c.Domain)
	assert.Equal(t, "com", c.TopLevelDomain)
	assert.True(t, c.IsValid)
	assert.Equal(t, "mail.example.com", c.FullyQualifiedDomain)
	assert.False(t, c.Valid, "merge does not decide validity")

	port = 25
	require.NotNil(t, c.Port)
	assert.Equal(t, 465, *c.Port, "port is copied, not shared")
}

func TestWithTypoSuggestions(t *testing.T) {
	v := emailaddr.New().WithTypoSuggestions()

	c := v.Validate("user@gmial.com")
	assert.True(t, c.Valid, "typo suspicion does not fail")
	assert.Equal(t, "gmail.com", c.Suggestion)

	c = v.Validate("user@gmail.com")
	assert.Empty(t, c.Suggestion)

	c = emailaddr.Validate("user@gmial.com")
	assert.Empty(t, c.Suggestion, "suggestions are opt-in")
}

func TestConfigErrors(t *testing.T) {
	v := emailaddr.New().WithCache(emailaddr.CacheOptions{TTL: -1})
	assert.ErrorIs(t, v.Err(), emailaddr.ErrInvalidCacheOptions)
	_, err := v.ValidateMany(context.Background(), []string{"user@example.com"})
	assert.ErrorIs(t, err, emailaddr.ErrInvalidCacheOptions)

	v = emailaddr.New().WithTypoSuggestions(emailaddr.TypoOptions{Threshold: -1})
	assert.ErrorIs(t, v.Err(), emailaddr.ErrInvalidTypoOptions)

	assert.NoError(t, emailaddr.New().WithCache().WithTypoSuggestions().Err())
}

func TestWithCache(t *testing.T) {
	p := &countingParser{}
	v := emailaddr.NewWithParser(p).WithCache()

	for i := 0; i < 10; i++ {
		assert.True(t, v.Validate("user@example.com").Valid)
	}
	assert.Equal(t, int64(1), p.calls.Load())
}

func TestValidateMany(t *testing.T) {
	v := emailaddr.New().WithCache()
	ctx := context.Background()

	emails := []string{"b@example.com", "invalid", "a@example.org", "c@example.com", "x@y@z"}
	results, err := v.ValidateMany(ctx, emails, emailaddr.ConcurrencyOptions{Workers: 3})
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, e := range emails {
		assert.Equal(t, e, results[i].SourceEmailAddress)
	}
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.True(t, results[2].Valid)
	assert.True(t, results[3].Valid)
	assert.False(t, results[4].Valid)
	assert.Equal(t, 3, emailaddr.ValidCount(results))
}

func TestContext_String(t *testing.T) {
	c := emailaddr.Validate("  Bob@Example.com ")
	assert.Equal(t, "bob@example.com", c.String())
	assert.Equal(t, "", emailaddr.Validate("   ").String())
}

func TestValidateMany_Empty(t *testing.T) {
	results, err := emailaddr.New().ValidateMany(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestValidateMany_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emailaddr.New().ValidateMany(ctx, []string{"a@example.com", "b@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidator_Concurrent(t *testing.T) {
	v := emailaddr.New().WithCache().WithTypoSuggestions()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, v.Validate("user@example.com").Valid)
			assert.False(t, v.Validate("user@@example.com").Valid)
		}()
	}
	wg.Wait()
}
