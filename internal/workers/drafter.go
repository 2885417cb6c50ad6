package workers

import (
	"fmt"
	"strings"
)

// The disclaimer and call-to-action paragraphs are byte-identical across
// every drafted reply.
const (
	disclaimerParagraph = "This response is provided for general guidance based on the contract provisions made available to us and does not constitute a formal legal opinion. It should not be relied upon as a substitute for advice on the complete agreement and the applicable law."

	callToActionParagraph = "Please let us know if you require further clarification on any of the points above, or if you would like us to assist with drafting the relevant notices or correspondence."

	defaultSignatureName = "Your Legal Team"
)

// DraftReply assembles the reply from seven fixed segments: subject,
// salutation, acknowledgment, per-question answers, disclaimer, call to
// action and signature. Every segment is present in every output; sparse
// inputs fall back to generic wording inside the segment instead of
// dropping it.
func DraftReply(emailText string, a EmailAnalysis, contractText string) string {
	return draftReply(emailText, a, contractText, DefaultMatchOptions, "")
}

func draftReply(_ string, a EmailAnalysis, contractText string, opts MatchOptions, signatureName string) string {
	if strings.TrimSpace(signatureName) == "" {
		signatureName = defaultSignatureName
	}
	clauses := ParseClauses(contractText)

	var b strings.Builder
	b.WriteString("Subject: " + replySubject(a.PrimaryTopic) + "\n\n")
	b.WriteString(salutation(a.Parties) + "\n\n")
	b.WriteString(acknowledgment(a.AgreementReference) + "\n\n")
	b.WriteString(answerSection(a.Questions, clauses, opts))
	b.WriteString(disclaimerParagraph + "\n\n")
	b.WriteString(callToActionParagraph + "\n\n")
	b.WriteString("Regards,\n" + signatureName + "\n")
	return b.String()
}

func replySubject(topic string) string {
	if topic == "" {
		return "Re: Your Email"
	}
	return "Re: " + titleCase(strings.ReplaceAll(topic, "_", " "))
}

func salutation(p Parties) string {
	if p.Counterparty != "" {
		return "Dear " + p.Counterparty + ","
	}
	return "Dear Counsel,"
}

func acknowledgment(ref AgreementReference) string {
	if ref.Type == "" {
		return "Thank you for your email. We have reviewed your queries and set out our responses below."
	}
	dated := ""
	if ref.Date != "" {
		dated = " dated " + ref.Date
	}
	return fmt.Sprintf("Thank you for your email regarding the %s%s. We have reviewed your queries and set out our responses below.", ref.Type, dated)
}

func answerSection(questions []string, clauses []ClauseReference, opts MatchOptions) string {
	if len(questions) == 0 {
		return "We note that your email does not raise specific questions. Should any particular issue require our review, please set it out and we will respond with reference to the relevant contractual provisions.\n\n"
	}
	var b strings.Builder
	for i, q := range questions {
		matched := matchClauses(clauses, q, opts)
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, questionHeading(q), answerParagraph(matched))
	}
	return b.String()
}

func questionHeading(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return q
	}
	if !strings.HasSuffix(q, "?") && !strings.HasSuffix(q, ".") {
		q += "."
	}
	return q
}

// answerParagraph quotes the matched clause text verbatim so concrete terms
// (notice periods, cure windows) surface in the reply, then cites the
// clause numbers. With no match above the relevance floor it hedges without
// inventing a citation.
func answerParagraph(matched []ClauseReference) string {
	if len(matched) == 0 {
		return "We acknowledge this query; however, the provisions made available to us do not directly address the point. We would be pleased to advise further once the complete agreement is provided."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Under Clause %s, %q", matched[0].ClauseNumber, matched[0].Text)
	for _, c := range matched[1:] {
		fmt.Fprintf(&b, " Read with Clause %s, %q", c.ClauseNumber, c.Text)
	}
	fmt.Fprintf(&b, " Therefore, pursuant to Clause %s, the position set out above applies to your query.", citationList(matched))
	return b.String()
}

func citationList(refs []ClauseReference) string {
	numbers := make([]string, len(refs))
	for i, r := range refs {
		numbers[i] = r.ClauseNumber
	}
	if len(numbers) <= 1 {
		return strings.Join(numbers, "")
	}
	return strings.Join(numbers[:len(numbers)-1], ", ") + " and " + numbers[len(numbers)-1]
}
