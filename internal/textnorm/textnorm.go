// Package textnorm canonicalizes short free-text terms (skills, functions,
// languages, outcomes) so that trivially different spellings compare equal.
package textnorm

import (
	"strings"
	"unicode"
)

// symbol-bearing technology names that would collapse into a bare letter otherwise
var symbolTerms = map[string]string{
	"c++":  "cpp",
	"c#":   "csharp",
	"f#":   "fsharp",
	".net": "dotnet",
}

// Normalize lowercases term, turns runs of punctuation and symbols into single
// spaces, trims it and drops one trailing plural "s" or "es".
// The result is used both for exact comparison and as the embedded text.
func Normalize(term string) string {
	// "+", "#" and "." stay attached so "C++," and "C#/.NET" still reach symbolTerms
	words := strings.FieldsFunc(strings.ToLower(term), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	for i, w := range words {
		if replacement, ok := symbolTerms[w]; ok {
			words[i] = replacement
		} else if replacement, ok := symbolTerms[strings.TrimRight(w, ".")]; ok {
			words[i] = replacement
		}
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.Join(words, " ") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return singularize(b.String())
}

// NormalizeAll normalizes terms and drops the ones that normalize to nothing.
func NormalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func singularize(s string) string {
	last := s
	if idx := strings.LastIndexByte(s, ' '); idx >= 0 {
		last = s[idx+1:]
	}
	if len(last) <= 3 || strings.HasSuffix(last, "ss") || !strings.HasSuffix(last, "s") {
		return s
	}
	for _, suffix := range []string{"sses", "xes", "zes", "ches", "shes"} {
		if strings.HasSuffix(last, suffix) {
			return s[:len(s)-2]
		}
	}
	return s[:len(s)-1]
}
