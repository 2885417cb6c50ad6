package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// LegalWorkerState exposes the analysis and drafting engines as tools. The
// engines themselves are pure functions; this layer only handles JSON
// marshalling and tool dispatch, so concurrent use needs no locking.
type LegalWorkerState struct {
	Tools []ToolDef
	Opts  MatchOptions

	// Signature overrides the name on drafted replies; empty keeps the
	// default.
	Signature string
}

func NewLegalWorkerState(opts MatchOptions) *LegalWorkerState {
	return &LegalWorkerState{
		Tools: []ToolDef{
			{Name: "analyze_email", Description: "Extract structured facts (intent, topic, parties, questions, deadlines) from a legal email"},
			{Name: "draft_reply", Description: "Draft a professional reply citing relevant contract clauses"},
			{Name: "process_email", Description: "Analyze an email and draft a reply in one call"},
			{Name: "clause_extract", Description: "Parse numbered clauses out of contract text"},
		},
		Opts: opts.normalized(),
	}
}

func (w *LegalWorkerState) GetTools() []ToolDef {
	return w.Tools
}

func (w *LegalWorkerState) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	switch name {
	case "legal_analyze_email", "analyze_email":
		return w.analyze(ctx, input)
	case "legal_draft_reply", "draft_reply":
		return w.draft(ctx, input)
	case "legal_process_email", "process_email":
		return w.process(ctx, input)
	case "legal_clause_extract", "clause_extract":
		return w.clauseExtract(ctx, input)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// ProcessResult pairs the analysis with the optional draft. DraftReply is
// null when no contract text was supplied.
type ProcessResult struct {
	Analysis   EmailAnalysis `json:"analysis"`
	DraftReply *string       `json:"draft_reply"`
}

// ProcessEmail is the orchestration wrapper: extraction, clause matching
// and composition in sequence, with no logic of its own.
func ProcessEmail(emailText, contractText string) ProcessResult {
	return processEmail(emailText, contractText, DefaultMatchOptions, "")
}

func processEmail(emailText, contractText string, opts MatchOptions, signatureName string) ProcessResult {
	res := ProcessResult{Analysis: AnalyzeEmail(emailText)}
	if strings.TrimSpace(contractText) != "" {
		draft := draftReply(emailText, res.Analysis, contractText, opts, signatureName)
		res.DraftReply = &draft
	}
	return res
}

func (w *LegalWorkerState) analyze(_ context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		EmailText string `json:"email_text"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return json.Marshal(AnalyzeEmail(req.EmailText))
}

func (w *LegalWorkerState) draft(_ context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		EmailText    string         `json:"email_text"`
		Analysis     *EmailAnalysis `json:"analysis,omitempty"`
		ContractText string         `json:"contract_text"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	analysis := req.Analysis
	if analysis == nil {
		a := AnalyzeEmail(req.EmailText)
		analysis = &a
	}
	reply := draftReply(req.EmailText, *analysis, req.ContractText, w.Opts, w.Signature)
	return json.Marshal(map[string]string{"draft_reply": reply})
}

func (w *LegalWorkerState) process(_ context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		EmailText    string `json:"email_text"`
		ContractText string `json:"contract_text"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return json.Marshal(processEmail(req.EmailText, req.ContractText, w.Opts, w.Signature))
}

func (w *LegalWorkerState) clauseExtract(_ context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		ContractText string `json:"contract_text"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	clauses := ParseClauses(req.ContractText)
	if clauses == nil {
		clauses = []ClauseReference{}
	}
	return json.Marshal(clauses)
}
