// Package directive parses the [key:value] override tokens embedded in
// report body text. Tokens may appear anywhere in the text, including
// mid-sentence; the parser extracts them and returns the cleaned text.
package directive

import "strings"

// Recognized directive keys. Unrecognized keys are still parsed and
// stored; they simply have no presentation effect.
const (
	KeyLargeText       = "texto_grande"
	KeyTextColor       = "color_texto"
	KeyRecommendations = "recomendaciones"
	KeyHighlight       = "resaltar"
	KeyDateFormat      = "formato_fecha"
)

// DateFormatLong is the value of formato_fecha selecting the long
// weekday/month footer date
const DateFormatLong = "largo"

// Parse extracts every [key:value] token from text.
// The key must not contain a colon or closing bracket, and the value must not
// contain a closing bracket; both are trimmed of surrounding whitespace.
// Repeated keys overwrite earlier values (last write wins). Matched
// substrings are removed from the text; cleanText is the remainder with
// leading and trailing whitespace trimmed. Unmatched brackets or colons
// without a closing bracket are left untouched.
func Parse(text string) (cleanText string, directives map[string]string) {
	directives = make(map[string]string)

	// Extract the first well-formed token, remove it, and rescan from
	// the start until none remain.
	for {
		match, ok := nextToken(text)
		if !ok {
			break
		}
		directives[match.key] = match.value
		text = text[:match.start] + text[match.end:]
	}

	return strings.TrimSpace(text), directives
}

// token is one matched [key:value] occurrence within the scanned text
type token struct {
	start, end int
	key, value string
}

// nextToken finds the first well-formed [key:value] token in s.
// A well-formed token is an opening bracket, a key with no colon or
// closing bracket, a colon, then a value with no closing bracket.
// An opening bracket is an ordinary key character, so "[[a:b]" yields
// the key "[a".
func nextToken(s string) (token, bool) {
	for open := 0; open < len(s); open++ {
		if s[open] != '[' {
			continue
		}
		colon := -1
		for i := open + 1; i < len(s); i++ {
			c := s[i]
			if colon == -1 {
				// Still scanning the key
				switch c {
				case ':':
					colon = i
				case ']':
					// Malformed key, give up on this opening bracket
					i = len(s)
				}
				continue
			}
			if c == ']' {
				return token{
					start: open,
					end:   i + 1,
					key:   strings.TrimSpace(s[open+1 : colon]),
					value: strings.TrimSpace(s[colon+1 : i]),
				}, true
			}
		}
	}
	return token{}, false
}
