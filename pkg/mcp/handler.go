package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sayalijadhao19/email-assist/internal/audit"
	"github.com/sayalijadhao19/email-assist/internal/config"
	"github.com/sayalijadhao19/email-assist/internal/workers"
)

type Worker interface {
	GetTools() []workers.ToolDef
	Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error)
}

type Handler struct {
	config  *config.Config
	audit   *audit.Auditor
	workers map[string]Worker
	server  *mcp.Server
}

func NewHandler(cfg *config.Config) *Handler {
	h := &Handler{
		config:  cfg,
		workers: make(map[string]Worker),
	}

	if cfg.Assist.Audit.Enabled {
		h.audit = audit.NewAuditor(cfg.Assist.Audit.DBPath)
	} else {
		h.audit = audit.NewDisabled()
	}

	// Legal worker: email analysis, clause extraction and reply drafting
	legal := workers.NewLegalWorkerState(workers.MatchOptions{
		TopK:     cfg.Assist.Matcher.TopK,
		MinScore: cfg.Assist.Matcher.MinScore,
	})
	legal.Signature = cfg.Assist.Drafter.SignatureName
	h.workers["legal"] = legal

	h.initMCPServer()
	return h
}

func (h *Handler) initMCPServer() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "Legal Email Assistant",
		Version: "1.0.0",
	}, nil)

	for name, worker := range h.workers {
		for _, tool := range worker.GetTools() {
			toolName := fmt.Sprintf("%s_%s", name, tool.Name)
			toolDesc := tool.Description
			w := worker
			mcp.AddTool(server, &mcp.Tool{
				Name:        toolName,
				Description: toolDesc,
			}, h.wrapTool(w, toolName))
		}
	}

	h.server = server
}

func (h *Handler) wrapTool(w Worker, toolName string) func(ctx context.Context, req *mcp.CallToolRequest, input any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input any) (*mcp.CallToolResult, any, error) {
		inputBytes, _ := json.Marshal(input)
		result, err := w.Execute(ctx, toolName, inputBytes)
		h.audit.Log(toolName, inputBytes, result, err)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: err.Error()},
				},
			}, nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(result)},
			},
		}, nil, nil
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.server == nil {
		http.Error(w, "MCP server not initialized", http.StatusInternalServerError)
		return
	}
	h.server.Run(r.Context(), &mcp.StdioTransport{})
}

// ExecuteTool dispatches a prefixed tool name to its worker and records
// the invocation in the audit trail.
func (h *Handler) ExecuteTool(ctx context.Context, toolName string, args json.RawMessage) ([]byte, error) {
	for name, worker := range h.workers {
		fullPrefix := name + "_"
		if len(toolName) > len(fullPrefix) && toolName[:len(fullPrefix)] == fullPrefix {
			shortName := toolName[len(fullPrefix):]
			result, err := worker.Execute(ctx, shortName, args)
			h.audit.Log(toolName, args, result, err)
			return result, err
		}
	}
	return nil, fmt.Errorf("tool not found: %s", toolName)
}

// ListTools returns every registered tool with its worker prefix
func (h *Handler) ListTools() []workers.ToolDef {
	var tools []workers.ToolDef
	for name, worker := range h.workers {
		for _, tool := range worker.GetTools() {
			tools = append(tools, workers.ToolDef{
				Name:        name + "_" + tool.Name,
				Description: tool.Description,
			})
		}
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// AuditLogs exposes recent audit entries
func (h *Handler) AuditLogs(limit int) ([]audit.Entry, error) {
	return h.audit.GetLogs(limit)
}

// Close releases the audit database
func (h *Handler) Close() {
	h.audit.Close()
}
