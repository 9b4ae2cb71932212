package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCaseQuantity(t *testing.T) {
	parser := NewCatalogParser()

	tests := []struct {
		name     string
		html     string
		expected string
		pattern  string
		hasError bool
	}{
		{
			name:     "Case code in heading",
			html:     `<h1>Dragon Figurine C/12</h1>`,
			expected: "12",
			pattern:  "case-code",
		},
		{
			name:     "Case of phrasing",
			html:     `<div>Sold in a case of 24 units</div>`,
			expected: "24",
			pattern:  "case-of",
		},
		{
			name:     "Pack of phrasing",
			html:     `<p>Pack of 6</p>`,
			expected: "6",
			pattern:  "pack-of",
		},
		{
			name:     "Per case phrasing",
			html:     `<span>36 per case</span>`,
			expected: "36",
			pattern:  "per-case",
		},
		{
			name:     "Quantity label",
			html:     `<td>Quantity: 48</td>`,
			expected: "48",
			pattern:  "quantity",
		},
		{
			name:     "Earlier pattern wins over later",
			html:     `<div>C/12 also available as pack of 6</div>`,
			expected: "12",
			pattern:  "case-code",
		},
		{
			name:     "Quantity inside script ignored",
			html:     `<script>var x = "case of 99";</script><div>no packaging info</div>`,
			hasError: true,
		},
		{
			name:     "No case quantity",
			html:     `<div>Beautiful ceramic mug</div>`,
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, pattern, err := parser.ExtractCaseQuantity(tt.html)

			if tt.hasError {
				assert.Error(t, err)
				assert.Empty(t, value)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, value)
				assert.Equal(t, tt.pattern, pattern)
			}
		})
	}
}

func TestCaseQuantityFromText(t *testing.T) {
	parser := NewCatalogParser()

	value, ok := parser.CaseQuantityFromText("Lucky Cat Figurine C/8")
	require.True(t, ok)
	assert.Equal(t, "8", value)

	_, ok = parser.CaseQuantityFromText("Lucky Cat Figurine")
	assert.False(t, ok)
}

func TestExtractPrice(t *testing.T) {
	parser := NewCatalogParser()

	tests := []struct {
		name     string
		html     string
		expected string
		hasError bool
	}{
		{
			name:     "Currency amount in text",
			html:     `<span>$24.50</span>`,
			expected: "$24.50",
		},
		{
			name:     "Price label",
			html:     `<div>Price: $13.99</div>`,
			expected: "$13.99",
		},
		{
			name:     "Dollar sign in script ignored",
			html:     `<script>var price = "$9.99";</script><div>call for pricing</div>`,
			hasError: true,
		},
		{
			name:     "Whole-dollar amount does not match",
			html:     `<div>$25</div>`,
			hasError: true,
		},
		{
			name:     "No price",
			html:     `<div>Login to see pricing</div>`,
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := parser.ExtractPrice(tt.html)

			if tt.hasError {
				assert.Error(t, err)
				assert.Empty(t, value)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, value)
			}
		})
	}
}

func TestHeadingText(t *testing.T) {
	parser := NewCatalogParser()

	heading, err := parser.HeadingText(`<h1></h1><h2>Celtic Knot Box</h2>`)
	require.NoError(t, err)
	assert.Equal(t, "Celtic Knot Box", heading)

	_, err = parser.HeadingText(`<div>no headings here</div>`)
	assert.Error(t, err)
}

func TestProductNameFromTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Ceramic Mug | Pacific Trading", "Ceramic Mug"},
		{"Dragon Figurine C/12 | Pacific Trading | Shop", "Dragon Figurine C/12"},
		{"Plain Title", "Plain Title"},
		{"  Padded  | Vendor", "Padded"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ProductNameFromTitle(tt.title))
	}
}
