package utils

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const waSuffix = "@s.whatsapp.net"

var nonDigit = regexp.MustCompile(`[^0-9]`)

// NormalizePhone normalizes a phone number to E.164 form (+<digits>).
// Accepts numbers with or without a leading +, with spaces, dashes or
// parentheses, and WhatsApp JIDs (<number>@s.whatsapp.net).
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	// Strip a JID suffix if the caller passed a platform identifier
	if at := strings.Index(s, "@"); at != -1 {
		s = s[:at]
	}

	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) < 7 || len(digits) > 15 {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}

	return "+" + digits, nil
}

// PhoneToJID derives the WhatsApp platform identifier from a normalized
// phone number.
func PhoneToJID(phone string) string {
	return strings.TrimPrefix(phone, "+") + waSuffix
}

// JIDToPhone extracts the E.164 phone number from a WhatsApp JID.
func JIDToPhone(jid string) (string, error) {
	return NormalizePhone(jid)
}

// NormalizeDisplayName NFC-normalizes a contact display name and strips
// control characters that some providers embed in push names.
func NormalizeDisplayName(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
