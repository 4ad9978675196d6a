package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{
			name:     "already normalized",
			input:    "+31612345678",
			expected: "+31612345678",
		},
		{
			name:     "missing plus",
			input:    "31612345678",
			expected: "+31612345678",
		},
		{
			name:     "spaces and dashes",
			input:    "+31 6 1234-5678",
			expected: "+31612345678",
		},
		{
			name:     "parentheses",
			input:    "+1 (555) 012-3456",
			expected: "+15550123456",
		},
		{
			name:     "whatsapp jid",
			input:    "31612345678@s.whatsapp.net",
			expected: "+31612345678",
		},
		{
			name:     "surrounding whitespace",
			input:    "  +31612345678  ",
			expected: "+31612345678",
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only whitespace",
			input:       "   ",
			expectError: true,
		},
		{
			name:        "too short",
			input:       "12345",
			expectError: true,
		},
		{
			name:        "too long",
			input:       "1234567890123456",
			expectError: true,
		},
		{
			name:        "no digits",
			input:       "not-a-number",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePhone(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	first, err := NormalizePhone("31 6 12345678")
	require.NoError(t, err)

	second, err := NormalizePhone(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPhoneToJID(t *testing.T) {
	assert.Equal(t, "31612345678@s.whatsapp.net", PhoneToJID("+31612345678"))
	assert.Equal(t, "31612345678@s.whatsapp.net", PhoneToJID("31612345678"))
}

func TestJIDToPhone(t *testing.T) {
	phone, err := JIDToPhone("31612345678@s.whatsapp.net")
	require.NoError(t, err)
	assert.Equal(t, "+31612345678", phone)
}

func TestJIDRoundTrip(t *testing.T) {
	phone := "+31612345678"
	jid := PhoneToJID(phone)
	back, err := JIDToPhone(jid)
	require.NoError(t, err)
	assert.Equal(t, phone, back)
}

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name",
			input:    "Maria Lopez",
			expected: "Maria Lopez",
		},
		{
			name:     "trims whitespace",
			input:    "  Maria  ",
			expected: "Maria",
		},
		{
			name:     "strips control characters",
			input:    "Mar	ia",
			expected: "Maria",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDisplayName(tt.input))
		})
	}
}
