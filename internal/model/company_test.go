package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare domain", "example.com", "example.com"},
		{"uppercase", "Example.COM", "example.com"},
		{"https scheme", "https://example.com", "example.com"},
		{"http scheme", "http://example.com", "example.com"},
		{"protocol relative", "//example.com", "example.com"},
		{"www prefix", "www.example.com", "example.com"},
		{"scheme and www", "https://www.example.com", "example.com"},
		{"trailing slash", "https://example.com/", "example.com"},
		{"path", "https://example.com/products/search", "example.com"},
		{"query string", "example.com?utm=x", "example.com"},
		{"port", "example.com:8080", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"subdomain kept", "shop.example.co.uk", "shop.example.co.uk"},
		{"surrounding whitespace", "  example.com  ", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDomain(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDomainInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "https://", "localhost", "nodot"} {
		t.Run(raw, func(t *testing.T) {
			_, err := NormalizeDomain(raw)
			assert.Error(t, err)
		})
	}
}

func TestHasPartnerTech(t *testing.T) {
	c := Company{Domain: "example.com"}
	assert.False(t, c.HasPartnerTech())

	c.PartnerTech = []string{"Shopify"}
	assert.True(t, c.HasPartnerTech())
}
