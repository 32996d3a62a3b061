package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Conversation
		{
			Name:        "handle_message",
			Description: "Send a natural-language request (English or Spanish). Mutations come back as a preview with an action_id; nothing is applied until confirm_action.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "Conversation session ID (omit to use the transport session or the default session)",
					},
					"text": map[string]any{
						"type":        "string",
						"description": "The user's message",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "confirm_action",
			Description: "Confirm or cancel a pending action by ID. Pending actions expire five minutes after they are proposed.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action_id": map[string]any{
						"type":        "string",
						"description": "The action_id returned by handle_message",
					},
					"confirm": map[string]any{
						"type":        "boolean",
						"description": "true to execute the action, false to cancel it",
					},
				},
				"required": []string{"action_id", "confirm"},
			},
		},

		// Planning
		{
			Name:        "get_week_plan",
			Description: "Generate the tiered weekly plan (must-do, should-do, not-this-week) from current tasks and capacity",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_capacity",
			Description: "Get the current week's capacity budget, committed load, and overload status",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_risk_report",
			Description: "Assess key-result risk (stalled, silent, behind schedule) across active objectives",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Browsing
		{
			Name:        "list_tasks",
			Description: "List tasks, optionally filtered by status, committed week, objective, or kind",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"statuses": map[string]any{
						"type":        "array",
						"description": "Filter by task statuses",
						"items": map[string]any{
							"type": "string",
							"enum": []string{"active", "done", "archived"},
						},
					},
					"week": map[string]any{
						"type":        "string",
						"description": "Filter by committed week token, e.g. 2026-W10",
					},
					"objective_id": map[string]any{
						"type":        "string",
						"description": "Filter by linked objective ID",
					},
					"kind": map[string]any{
						"type":        "string",
						"description": "Filter by task kind",
						"enum":        []string{"simple", "project"},
					},
				},
			},
		},
		{
			Name:        "list_inbox",
			Description: "List unprocessed inbox captures awaiting triage",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "list_blocks",
			Description: "List calendar blocks, optionally filtered by date",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{
						"type":        "string",
						"description": "Filter by date (YYYY-MM-DD)",
					},
				},
			},
		},
	}
}

// registerTools registers every catalog tool against the SDK server, routing
// calls through the handler's dispatch.
func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, def := range buildToolCatalog() {
		def := def
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: mustSchema(def.Name, def.InputSchema),
		}, toolHandler(h, def.Name))
	}
}

func toolHandler(h *Handler, name string) func(context.Context, *sdkmcp.CallToolRequest, map[string]any) (*sdkmcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, args map[string]any) (*sdkmcp.CallToolResult, any, error) {
		params, err := json.Marshal(args)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode arguments: %w", err)
		}
		out, err := h.Handle(ctx, getSessionID(ctx), name, params)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	}
}

// mustSchema bridges the map-based catalog into the SDK's schema type. The
// catalog is static, so a malformed schema is a programming error.
func mustSchema(name string, m map[string]any) *jsonschema.Schema {
	data, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("tool %s: %v", name, err))
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		panic(fmt.Sprintf("tool %s: %v", name, err))
	}
	return &schema
}
