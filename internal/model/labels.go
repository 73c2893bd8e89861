package model

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-.\s]+`)

var acronyms = map[string]string{
	"id":  "ID",
	"url": "URL",
	"api": "API",
	"vat": "VAT",
}

// DefaultLabeler converts a field key into a human-friendly label. It splits
// on separators and camelCase boundaries and upper-cases known acronyms.
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	var segments []string
	for _, word := range splitWordsPattern.Split(name, -1) {
		if word == "" {
			continue
		}
		for _, part := range strings.Fields(splitCamel(word)) {
			segments = append(segments, labelWord(part))
		}
	}
	if len(segments) == 0 {
		return ""
	}
	segments[0] = capitalize(segments[0])
	for i := 1; i < len(segments); i++ {
		if _, ok := acronyms[strings.ToLower(segments[i])]; !ok {
			segments[i] = strings.ToLower(segments[i])
		}
	}
	return strings.Join(segments, " ")
}

func labelWord(word string) string {
	if acronym, ok := acronyms[strings.ToLower(word)]; ok {
		return acronym
	}
	return strings.ToLower(word)
}

func splitCamel(input string) string {
	var out strings.Builder
	runes := []rune(input)
	for i, r := range runes {
		if i > 0 && isBoundary(runes, i) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// isBoundary splits "userID" into user/ID and "HTTPServer" into HTTP/Server.
func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case isLower(prev) && isUpper(cur):
		return true
	case isLetter(prev) && isDigit(cur), isDigit(prev) && isLetter(cur):
		return true
	case isUpper(prev) && isUpper(cur) && i+1 < len(runes) && isLower(runes[i+1]):
		return true
	}
	return false
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func capitalize(word string) string {
	if word == "" || isUpper([]rune(word)[0]) {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
