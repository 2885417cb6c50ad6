package workers

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// EmailAnalysis is the structured extraction result for one legal email.
// The JSON field layout is the contract external callers rely on.
type EmailAnalysis struct {
	Intent             string             `json:"intent"`
	PrimaryTopic       string             `json:"primary_topic"`
	Parties            Parties            `json:"parties"`
	AgreementReference AgreementReference `json:"agreement_reference"`
	Questions          []string           `json:"questions"`
	RequestedDueDate   string             `json:"requested_due_date,omitempty"`
	UrgencyLevel       string             `json:"urgency_level"`
}

// Parties holds legal-entity names found in the email body. The writing
// party names itself first, so the first distinct match is the client and
// the second the counterparty.
type Parties struct {
	Client       string `json:"client,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
}

type AgreementReference struct {
	Type string `json:"type,omitempty"`
	Date string `json:"date,omitempty"`
}

const (
	IntentLegalAdviceRequest = "legal_advice_request"
	IntentTerminationNotice  = "termination_notice"
	IntentBreachNotification = "breach_notification"
	IntentInformationRequest = "information_request"
	IntentOther              = "other"
)

const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// TopicGeneralInquiry is the fallback when no topic keywords occur.
const TopicGeneralInquiry = "general_inquiry"

// intentRules are evaluated in order; the first label whose cue set matches
// wins, so classification stays deterministic when cue sets co-occur.
var intentRules = []struct {
	label string
	cues  []string
}{
	{IntentLegalAdviceRequest, []string{
		"please advise", "request your opinion", "your advice",
		"legal opinion", "please confirm", "kindly advise", "kindly confirm",
		"seek your guidance",
	}},
	{IntentTerminationNotice, []string{
		"hereby terminate", "notice of termination",
		"terminate with immediate effect",
	}},
	{IntentBreachNotification, []string{
		"notice of breach", "hereby notify you", "in material breach",
		"breach of your obligations",
	}},
	{IntentInformationRequest, []string{
		"please provide", "could you share", "request information",
		"we have some questions",
	}},
}

// topicVocabulary order doubles as the tie-break order when occurrence
// counts are equal. Stems ("terminat", "indemn") catch inflected forms.
var topicVocabulary = []struct {
	label    string
	keywords []string
}{
	{"termination_for_cause", []string{"terminat", "for cause", "notice period", "wind up"}},
	{"breach_of_contract", []string{"breach", "default", "non-performance", "failure to perform"}},
	{"payment_dispute", []string{"payment", "invoice", "outstanding", "fees", "refund"}},
	{"confidentiality", []string{"confidential", "non-disclosure", "nda", "proprietary information"}},
	{"indemnity", []string{"indemn", "hold harmless", "liability", "damages"}},
	{"intellectual_property", []string{"intellectual property", "copyright", "trademark", "licence", "license"}},
}

var highUrgencyCues = []string{
	"immediately", "urgent", "as soon as possible", "asap",
	"within 24 hours", "within 48 hours", "time-sensitive", "time sensitive",
}

var (
	// Capitalized multi-word name ending in a recognized legal-entity
	// suffix. Longer suffixes come first so "Pvt. Ltd." is not cut to "Ltd.".
	partyRe = regexp.MustCompile(`\b((?:[A-Z][A-Za-z&'-]+\s+)+(?:Pvt\.\s?Ltd\.|Private Limited|Pte\.\s?Ltd\.|LLP|LLC|Inc\.|Corp\.|Ltd\.|PLC|GmbH|Co\.))`)

	agreementPhraseRe  = regexp.MustCompile(`\b((?:[A-Z][a-z]+\s+)+Agreement)\b`)
	agreementAcronymRe = regexp.MustCompile(`\b(NDA|MSA|SOW)\b`)
	agreementDateRe    = regexp.MustCompile(`dated\s+(\d{1,2}\s+[A-Z][a-z]+,?\s+\d{4}|[A-Z][a-z]+\s+\d{1,2},\s+\d{4}|\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`)

	sentenceQuestionRe = regexp.MustCompile(`[A-Za-z][^.?!]*\?`)
	greetingPrefixRe   = regexp.MustCompile(`^(?:Dear|Hi|Hello)\b[^,]*,\s*`)
	numberedItemRe     = regexp.MustCompile(`(\d+)[.)]\s+([A-Z][^;.]+)`)

	// Date expressions are only recognized next to a deadline cue, so
	// incidental dates ("dated 10 March 2023") are never picked up.
	dueDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?i:by|no later than|on or before|before)\s+(\d{1,2}\s+[A-Z][a-z]+\s+\d{4})`),
		regexp.MustCompile(`\b(?i:by|no later than|on or before|before)\s+([A-Z][a-z]+\s+\d{1,2},\s+\d{4})`),
		regexp.MustCompile(`\b(?i:by|no later than|on or before|before)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)\b(within\s+\d+\s+(?:business\s+)?days?)\b`),
	}
)

var questionCues = []string{
	"please confirm", "please advise", "please clarify", "kindly advise",
	"kindly confirm", "we would like to know", "could you confirm",
	"could you clarify",
}

// AnalyzeEmail converts raw email text into a structured record. It is a
// total function: malformed or empty input degrades to documented defaults,
// never to an error.
func AnalyzeEmail(emailText string) EmailAnalysis {
	flat := normalizeSpace(emailText)
	lower := strings.ToLower(flat)

	a := EmailAnalysis{
		Intent:             classifyIntent(lower),
		PrimaryTopic:       classifyTopic(lower),
		Parties:            extractParties(flat),
		AgreementReference: extractAgreementReference(flat),
		Questions:          extractQuestions(flat),
		RequestedDueDate:   extractDueDate(flat),
	}
	a.UrgencyLevel = classifyUrgency(lower, a.RequestedDueDate)
	return a
}

func classifyIntent(lower string) string {
	for _, rule := range intentRules {
		for _, cue := range rule.cues {
			if strings.Contains(lower, cue) {
				return rule.label
			}
		}
	}
	return IntentOther
}

// classifyTopic counts raw keyword occurrences per topic; the highest count
// wins and equal counts resolve to vocabulary order.
func classifyTopic(lower string) string {
	best := TopicGeneralInquiry
	bestCount := 0
	for _, topic := range topicVocabulary {
		count := 0
		for _, kw := range topic.keywords {
			count += strings.Count(lower, kw)
		}
		if count > bestCount {
			best = topic.label
			bestCount = count
		}
	}
	return best
}

func extractParties(flat string) Parties {
	var p Parties
	seen := make(map[string]bool)
	for _, m := range partyRe.FindAllString(flat, -1) {
		name := normalizeSpace(m)
		if seen[name] {
			continue
		}
		seen[name] = true
		switch {
		case p.Client == "":
			p.Client = name
		case p.Counterparty == "":
			p.Counterparty = name
		}
		if p.Counterparty != "" {
			break
		}
	}
	return p
}

// extractAgreementReference prefers a full "<Title Case> Agreement" phrase
// over a bare acronym, so "Master Services Agreement" beats an earlier
// "MSA" in the subject line. Type and date are extracted independently.
func extractAgreementReference(flat string) AgreementReference {
	var ref AgreementReference
	if m := agreementPhraseRe.FindStringSubmatch(flat); m != nil {
		ref.Type = m[1]
	} else if m := agreementAcronymRe.FindStringSubmatch(flat); m != nil {
		ref.Type = m[1]
	}
	if m := agreementDateRe.FindStringSubmatch(flat); m != nil {
		ref.Date = m[1]
	}
	return ref
}

// extractQuestions applies two rules in source order: (a) sentences ending
// in "?", and (b) sentences opening with an interrogative cue. A cue
// sentence ending in ":" pulls in the consecutively numbered list items
// that follow it. Overlapping captures are deduplicated with rule (a)
// taking precedence, and source order is preserved.
func extractQuestions(flat string) []string {
	var caps []capture

	for _, loc := range sentenceQuestionRe.FindAllStringIndex(flat, -1) {
		pos, text := loc[0], strings.TrimSpace(flat[loc[0]:loc[1]])
		// A salutation with no terminating period bleeds into the first
		// sentence; strip it rather than emit it as part of a question.
		if prefix := greetingPrefixRe.FindString(text); prefix != "" {
			pos += len(prefix)
			text = text[len(prefix):]
		}
		if text != "" {
			caps = append(caps, capture{pos, text})
		}
	}

	lower := strings.ToLower(flat)
	for _, cue := range questionCues {
		from := 0
		for {
			idx := strings.Index(lower[from:], cue)
			if idx < 0 {
				break
			}
			idx += from
			end := idx
			for end < len(flat) && !strings.ContainsRune(".?!:", rune(flat[end])) {
				end++
			}
			if end < len(flat) && flat[end] == ':' {
				caps = append(caps, numberedItems(flat, end)...)
			} else {
				stop := end
				if stop < len(flat) {
					stop++
				}
				caps = append(caps, capture{idx, strings.TrimSpace(flat[idx:stop])})
			}
			from = idx + len(cue)
		}
	}

	sort.SliceStable(caps, func(i, j int) bool { return caps[i].pos < caps[j].pos })

	questions := []string{}
	seen := make(map[string]bool)
	for _, c := range caps {
		key := normalizeSpace(strings.ToLower(strings.TrimRight(c.text, "?;.,:")))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		questions = append(questions, c.text)
	}
	return questions
}

// capture is a question candidate pinned to its source offset so the final
// list can preserve order of appearance.
type capture struct {
	pos  int
	text string
}

// numberedItems captures a "1. ... 2. ..." enumeration following offset
// start. The sequence must begin at 1 and increment, which keeps stray
// numbers later in the text (years, clause references) out.
func numberedItems(flat string, start int) []capture {
	var items []capture
	next := 1
	for _, m := range numberedItemRe.FindAllStringSubmatchIndex(flat[start:], -1) {
		if flat[start+m[2]:start+m[3]] != strconv.Itoa(next) {
			break
		}
		next++
		items = append(items, capture{start + m[4], strings.TrimSpace(flat[start+m[4] : start+m[5]])})
	}
	return items
}

// extractDueDate tries the date patterns in fixed order; the first pattern
// that matches anywhere wins.
func extractDueDate(flat string) string {
	for _, re := range dueDatePatterns {
		if m := re.FindStringSubmatch(flat); m != nil {
			return m[1]
		}
	}
	return ""
}

// classifyUrgency: any high-urgency cue wins outright; explicit but
// non-immediate deadline language is medium; no cue at all is low.
func classifyUrgency(lower, dueDate string) string {
	for _, cue := range highUrgencyCues {
		if strings.Contains(lower, cue) {
			return UrgencyHigh
		}
	}
	if dueDate != "" || strings.Contains(lower, "deadline") || strings.Contains(lower, "no later than") {
		return UrgencyMedium
	}
	return UrgencyLow
}
