package workers

import (
	"strings"
	"unicode"
)

type ToolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// normalizeSpace collapses all runs of whitespace (including line wraps)
// into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Function words ignored when scoring lexical overlap. Content words that
// carry legal meaning (notice, breach, terminate, ...) stay in.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "with": true, "this": true, "that": true, "these": true,
	"those": true, "upon": true, "whether": true, "what": true, "which": true,
	"will": true, "would": true, "you": true, "your": true, "our": true,
	"from": true, "have": true, "has": true, "been": true, "please": true,
	"kindly": true, "any": true, "all": true, "not": true, "its": true,
	"may": true, "can": true, "could": true, "shall": true, "under": true,
	"into": true, "such": true, "other": true, "than": true,
}

// keywords tokenizes a query into the distinct content words used for
// clause scoring.
func keywords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		if len(f) <= 2 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// titleCase capitalizes the first letter of every word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
