package workers

import (
	"regexp"
	"strings"
)

// ClauseReference is a numbered unit of contract text, the atomic citation
// target for drafted replies. References are only ever produced from the
// supplied contract text, never fabricated.
type ClauseReference struct {
	ClauseNumber string `json:"clause_number"`
	Title        string `json:"title,omitempty"`
	Text         string `json:"text"`
}

// MatchOptions tune clause selection. TopK caps how many tied clauses a
// single question may cite; MinScore is the relevance floor below which a
// question is answered generically without a citation.
type MatchOptions struct {
	TopK     int `json:"top_k"`
	MinScore int `json:"min_score"`
}

var DefaultMatchOptions = MatchOptions{TopK: 2, MinScore: 1}

func (o MatchOptions) normalized() MatchOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultMatchOptions.TopK
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMatchOptions.MinScore
	}
	return o
}

var (
	clauseHeaderRe = regexp.MustCompile(`^\s*(?:Clause|Section|Article)\s+(\d+)\s*[–—:.-]?\s*(.*)$`)
	subClauseRe    = regexp.MustCompile(`^\s*(\d+\.\d+)\s+(.*)$`)
)

// ParseClauses splits contract text into numbered clauses. "Clause N – Title"
// lines open a section; "N.M body" lines open a sub-clause whose body
// absorbs continuation lines until the next header. A section with no
// sub-clauses becomes a single clause itself. Text that yields no headers
// parses to nil, not an error.
func ParseClauses(contractText string) []ClauseReference {
	var clauses []ClauseReference
	var open *ClauseReference
	var sectionBody []string
	sectionNum, sectionTitle := "", ""
	sectionHasChildren := false

	closeOpen := func() {
		if open != nil {
			clauses = append(clauses, *open)
			open = nil
		}
	}
	closeSection := func() {
		closeOpen()
		if sectionNum != "" && !sectionHasChildren {
			text := strings.TrimSpace(strings.Join(sectionBody, " "))
			if text == "" {
				text = sectionTitle
			}
			clauses = append(clauses, ClauseReference{
				ClauseNumber: sectionNum,
				Title:        sectionTitle,
				Text:         text,
			})
		}
		sectionNum, sectionTitle = "", ""
		sectionBody = nil
		sectionHasChildren = false
	}

	for _, line := range strings.Split(contractText, "\n") {
		if m := clauseHeaderRe.FindStringSubmatch(line); m != nil {
			closeSection()
			sectionNum = m[1]
			sectionTitle = strings.TrimSpace(m[2])
			continue
		}
		if m := subClauseRe.FindStringSubmatch(line); m != nil {
			closeOpen()
			sectionHasChildren = true
			open = &ClauseReference{
				ClauseNumber: m[1],
				Title:        sectionTitle,
				Text:         strings.TrimSpace(m[2]),
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if open != nil {
			open.Text += " " + trimmed
		} else if sectionNum != "" {
			sectionBody = append(sectionBody, trimmed)
		}
	}
	closeSection()
	return clauses
}

// MatchQuestion scores every parsed clause against one question and returns
// the top-scoring clause(s).
func MatchQuestion(question, contractText string) []ClauseReference {
	return matchClauses(ParseClauses(contractText), question, DefaultMatchOptions)
}

// matchClauses ranks clauses by term-presence overlap: the score is the
// number of distinct query keywords occurring in the clause title+text.
// All clauses tied at the best score are returned, capped at TopK, in
// contract order. A best score under MinScore returns nil so the caller
// falls back to generic, non-cited language.
func matchClauses(clauses []ClauseReference, query string, opts MatchOptions) []ClauseReference {
	opts = opts.normalized()
	kws := keywords(query)
	if len(kws) == 0 || len(clauses) == 0 {
		return nil
	}

	scores := make([]int, len(clauses))
	best := 0
	for i, c := range clauses {
		text := strings.ToLower(c.Title + " " + c.Text)
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				scores[i]++
			}
		}
		if scores[i] > best {
			best = scores[i]
		}
	}
	if best < opts.MinScore {
		return nil
	}

	var out []ClauseReference
	for i, c := range clauses {
		if scores[i] == best {
			out = append(out, c)
			if len(out) == opts.TopK {
				break
			}
		}
	}
	return out
}

// SelectClauses returns the clauses relevant to the analysis: the topic
// match plus every per-question match, deduplicated by clause number with
// contract order preserved.
func SelectClauses(contractText string, a EmailAnalysis) []ClauseReference {
	return selectClauses(ParseClauses(contractText), a, DefaultMatchOptions)
}

func selectClauses(clauses []ClauseReference, a EmailAnalysis, opts MatchOptions) []ClauseReference {
	if len(clauses) == 0 {
		return nil
	}
	selected := make(map[string]bool)
	mark := func(refs []ClauseReference) {
		for _, r := range refs {
			selected[r.ClauseNumber] = true
		}
	}
	mark(matchClauses(clauses, topicQuery(a.PrimaryTopic), opts))
	for _, q := range a.Questions {
		mark(matchClauses(clauses, q, opts))
	}

	var out []ClauseReference
	for _, c := range clauses {
		if selected[c.ClauseNumber] {
			out = append(out, c)
		}
	}
	return out
}

func topicQuery(topic string) string {
	return strings.ReplaceAll(topic, "_", " ")
}
