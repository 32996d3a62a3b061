package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tiller is a personal planning assistant: tasks, objectives, weekly capacity, and a confirmation gate in front of every mutation.

Core concepts:
- Task: simple or project-shaped (projects carry milestones). Tasks commit to ISO weeks ("2026-W10").
- Capacity: work hours minus breaks minus a safety buffer, per day and per week. Committed minutes are measured against the usable budget.
- Objective / Key Result: period-scoped goals ("2026-Q1", "2026-H1"). Key results feed the risk report and the planner's scoring.
- Pending action: every mutation is proposed first. handle_message returns a preview plus an action_id; nothing changes until confirm_action. Pending actions expire after five minutes.

Rules of engagement:
1) Talk, don't edit: send user requests to handle_message (English and Spanish both work). The reply either asks a clarifying question, lists candidates for an ambiguous target, or proposes a previewed action.
2) Always close the loop: when a reply carries requires_confirmation, relay the preview to the user and call confirm_action with their answer. A new request supersedes the previous pending action.
3) Expect vetoes: confirmation re-checks capacity against fresh state. A vetoed action comes back with the reason; suggest a rebalance.
4) Orient cheaply: get_capacity for the weekly budget, get_week_plan for the tiered plan, get_risk_report for at-risk key results, list_tasks / list_inbox / list_blocks to browse.

Transport notes:
- HTTP: pass session id via Mcp-Session-Id header.
- Stdio: pass session id via _meta.session_id when supported; handle_message also accepts a session_id argument.

Docs (read on demand):
- tiller://docs/index
- tiller://docs/confirmation
- tiller://docs/planning
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tiller://docs/index",
		Name:        "docs_index",
		Title:       "tiller docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read when.",
		Content: `# tiller: Agent Docs Index

## Quick start

1. ` + "`get_capacity`" + ` to see the weekly budget and committed load.
2. ` + "`handle_message`" + ` with the user's request; relay clarifying questions verbatim.
3. When a preview comes back, call ` + "`confirm_action`" + ` with the user's yes/no.
4. ` + "`get_week_plan`" + ` when the user asks what to work on.

## Docs (read on demand)

- ` + "`tiller://docs/confirmation`" + ` - the pending-action lifecycle and why confirms can fail.
- ` + "`tiller://docs/planning`" + ` - how the weekly plan is scored and tiered.

## Capabilities & intentional limitations

- All mutations flow through the preview/confirm gate; there is no direct write tool.
- Pending actions expire after five minutes; an expired confirm returns outcome "expired", not an error.
- Browse tools return snapshot state; they never mutate.
`,
	},
	{
		URI:         "tiller://docs/confirmation",
		Name:        "docs_confirmation",
		Title:       "Confirmation lifecycle",
		Description: "How pending actions move from proposed to executed, cancelled, expired, or vetoed.",
		Content: `# Confirmation lifecycle

Every mutation is proposed as a pending action and executed at most once.

## States

proposed (pending) -> confirmed | cancelled | expired

- ` + "`confirm_action(id, true)`" + ` executes the previewed payload and reports what changed.
- ` + "`confirm_action(id, false)`" + ` cancels without touching state.
- Five minutes after the proposal the action expires; confirming it then returns outcome "expired".
- Confirming an already-resolved action returns outcome "already_resolved" with its final status. Safe to retry.

## Vetoes

Confirmation re-validates the preview's capacity impact against fresh state. If the week filled up since the preview, the confirm returns outcome "vetoed" with the reason and the action is closed. Propose a rebalance ("rebalance my week") before retrying.

## Supersession

A new actionable request in the same session cancels the previous pending action. Only one action is ever awaiting confirmation per session.
`,
	},
	{
		URI:         "tiller://docs/planning",
		Name:        "docs_planning",
		Title:       "Weekly planning guide",
		Description: "How candidate tasks are scored, tiered, and packed into the usable weekly budget.",
		Content: `# Weekly planning guide

` + "`get_week_plan`" + ` ranks active, uncommitted tasks and packs them greedily into the remaining usable minutes.

## Scoring inputs

- Deadline proximity: due dates inside the week score high.
- Key-result risk: tasks linked to at-risk key results are boosted.
- Capacity fit: tasks that cannot fit the remaining budget are excluded entirely, not scored low.
- Objective linkage: linked tasks beat orphans at equal urgency.

## Tiers

- must_do: high total score with a pressing deadline or at-risk key result, and it fits.
- should_do: solid score, fits the remaining budget.
- not_this_week: everything else, kept visible so nothing silently disappears.

## Degraded mode

When risk signals are unavailable the pack is still produced and carries a "degraded" note. Planning never blocks on the risk provider.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
