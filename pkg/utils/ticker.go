// Package utils provides small shared helpers: ticker extraction from free
// text and null-propagating lookups over dynamic JSON payloads.
package utils

import "strings"

// commandWords are tokens that look like tickers but are part of the
// request phrasing, not the symbol.
var commandWords = map[string]bool{
	"ANALYZE": true,
	"ANALYSE": true,
	"REPORT":  true,
	"PLEASE":  true,
	"STOCK":   true,
	"FOR":     true,
	"THE":     true,
	"A":       true,
	"AN":      true,
	"OF":      true,
}

// ExtractTicker pulls the first plausible ticker symbol out of free text.
// Accepted forms include "TSLA", "$TSLA", "analyze TSLA" and "/analyze TSLA".
// It returns "" when no candidate is found.
func ExtractTicker(text string) string {
	for _, field := range strings.Fields(strings.ToUpper(text)) {
		tok := strings.TrimLeft(field, "/$")
		tok = strings.TrimRight(tok, ".,;:!?")
		if tok == "" || len(tok) > 6 {
			continue
		}
		if commandWords[tok] || !isAlnum(tok) {
			continue
		}
		return tok
	}
	return ""
}

func isAlnum(s string) bool {
	for _, c := range s {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
