package workers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clauseNumbers(refs []ClauseReference) []string {
	numbers := make([]string, len(refs))
	for i, r := range refs {
		numbers[i] = r.ClauseNumber
	}
	return numbers
}

func TestParseClauses(t *testing.T) {
	clauses := ParseClauses(sampleContract)

	require.Len(t, clauses, 4)
	assert.Equal(t, []string{"9.1", "9.2", "10.1", "10.2"}, clauseNumbers(clauses))
	assert.Equal(t, "Termination for Cause", clauses[0].Title)
	assert.Equal(t, "Notice", clauses[2].Title)
	// Wrapped body lines are joined into the clause text.
	assert.Contains(t, clauses[0].Text, "thirty (30) days' written notice")
}

func TestParseClausesSectionWithoutSubClauses(t *testing.T) {
	contract := `Clause 5 – Confidentiality
Each Party shall keep the terms of this Agreement confidential.`
	clauses := ParseClauses(contract)

	require.Len(t, clauses, 1)
	assert.Equal(t, "5", clauses[0].ClauseNumber)
	assert.Equal(t, "Confidentiality", clauses[0].Title)
	assert.Contains(t, clauses[0].Text, "confidential")
}

func TestParseClausesNoNumbering(t *testing.T) {
	assert.Empty(t, ParseClauses("This contract has no numbered provisions at all."))
	assert.Empty(t, ParseClauses(""))
}

func TestMatchQuestionPicksBestClause(t *testing.T) {
	refs := MatchQuestion("What is the minimum notice period?", sampleContract)

	require.Len(t, refs, 1)
	assert.Equal(t, "10.2", refs[0].ClauseNumber)
}

func TestMatchQuestionTiesReturnedInContractOrder(t *testing.T) {
	contract := `Clause 1 – Payment
1.1 Payment of invoices is payable monthly.
1.2 Payment of invoices attracts interest when late.`
	refs := matchClauses(ParseClauses(contract), "Tell us about payment of invoices", DefaultMatchOptions)

	require.Len(t, refs, 2)
	assert.Equal(t, []string{"1.1", "1.2"}, clauseNumbers(refs))
}

func TestMatchQuestionTopKCapsTies(t *testing.T) {
	contract := `Clause 1 – Fees
1.1 Fees for the services are payable monthly.
1.2 Fees for the services are payable in arrears.
1.3 Fees for the services may be revised annually.`
	refs := matchClauses(ParseClauses(contract), "fees services", DefaultMatchOptions)

	require.Len(t, refs, 2)
	assert.Equal(t, []string{"1.1", "1.2"}, clauseNumbers(refs))
}

func TestMatchQuestionBelowThreshold(t *testing.T) {
	refs := MatchQuestion("What about trademark registration in Japan?", sampleContract)
	assert.Empty(t, refs)
}

func TestSelectClausesForSampleAnalysis(t *testing.T) {
	a := EmailAnalysis{
		Intent:       IntentLegalAdviceRequest,
		PrimaryTopic: "termination_for_cause",
		Questions: []string{
			"Whether we are contractually entitled to terminate for cause?",
			"The minimum notice period required?",
		},
		UrgencyLevel: UrgencyMedium,
	}
	refs := SelectClauses(sampleContract, a)

	assert.Equal(t, []string{"9.1", "9.2", "10.2"}, clauseNumbers(refs))
}

func TestSelectClausesDeterministic(t *testing.T) {
	a := AnalyzeEmail(sampleEmail)
	first := SelectClauses(sampleContract, a)
	second := SelectClauses(sampleContract, a)
	assert.Equal(t, first, second)
}

func TestSelectClausesEmptyContract(t *testing.T) {
	a := AnalyzeEmail(sampleEmail)
	assert.Empty(t, SelectClauses("", a))
	assert.Empty(t, SelectClauses("no numbered clauses here", a))
}
