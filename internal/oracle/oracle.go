// Package oracle parses free-form messages into intent drafts with an LLM.
// The model only selects a function and extracts arguments; every mutation
// still flows through the preview and confirmation pipeline, so a wrong
// extraction can propose the wrong change but never apply one.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/conversation"
	"github.com/ledeberg/tiller/internal/domain/intent"
)

const instructions = `You turn a personal-productivity request (English or Spanish) into exactly one
function call. Extract only what the user actually said; leave unknown fields
empty rather than guessing. Dates may be passed through as the user phrased
them (e.g. "tomorrow", "friday", "2026-03-06"). Time ranges use "HH:MM-HH:MM".
Periods use phrases like "Q1 2026" or "first half 2026". If the message is not
a request you can place, answer in text instead of calling a function.`

// Parser implements conversation.Parser over the OpenAI Responses API,
// degrading to a fallback parser whenever the model is unavailable or
// unhelpful.
type Parser struct {
	client   *openai.Client
	model    string
	fallback conversation.Parser
	logger   *slog.Logger
}

// NewParser creates an oracle parser. The fallback is required; a nil logger
// discards.
func NewParser(apiKey, model string, fallback conversation.Parser, logger *slog.Logger) *Parser {
	if model == "" {
		model = openai.ChatModelGPT4_1Mini
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Parser{client: &client, model: model, fallback: fallback, logger: logger}
}

// Parse asks the model for a function call and maps it onto a draft.
func (p *Parser) Parse(ctx context.Context, text string, now time.Time) (*intent.Draft, bool, error) {
	if p.client == nil {
		return p.fallback.Parse(ctx, text, now)
	}

	params := responses.ResponseNewParams{
		Model:        p.model,
		Instructions: param.NewOpt(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{userMessage(text)},
		},
		Tools: toToolParams(functionCatalog()),
	}

	res, err := p.client.Responses.New(ctx, params)
	if err != nil {
		p.logger.Warn("oracle unavailable, falling back to keyword parsing", "error", err)
		return p.fallback.Parse(ctx, text, now)
	}

	for _, out := range res.Output {
		if out.Type != "function_call" {
			continue
		}
		call := out.AsFunctionCall()
		draft, err := toDraft(call.Name, []byte(call.Arguments), now)
		if err != nil {
			p.logger.Warn("oracle produced unusable arguments, falling back",
				"function", call.Name, "error", err)
			return p.fallback.Parse(ctx, text, now)
		}
		return draft, true, nil
	}

	// The model answered in prose: give the deterministic parser a chance
	// before declaring the message not understood.
	return p.fallback.Parse(ctx, text, now)
}

// toolArgs is the argument envelope shared by every function in the catalog.
type toolArgs struct {
	Title            string  `json:"title"`
	Target           string  `json:"target"`
	Objective        string  `json:"objective"`
	Milestone        string  `json:"milestone"`
	Period           string  `json:"period"`
	Date             string  `json:"date"`
	TimeRange        string  `json:"time_range"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	Value            float64 `json:"value"`
	HasValue         bool    `json:"has_value"`
	Commit           bool    `json:"commit"`
	Uncommit         bool    `json:"uncommit"`
	Archive          bool    `json:"archive"`
	Area             string  `json:"area"`
	WorkHoursPerDay  int     `json:"work_hours_per_day"`
	BufferPercent    int     `json:"buffer_percent"`
	BreakMinutes     int     `json:"break_minutes_per_day"`
	WorkDaysPerWeek  int     `json:"work_days_per_week"`
}

// toDraft maps a function call onto an intent draft, normalizing any
// extracted slot values. Unknown function names and bad slot values error so
// the caller can fall back.
func toDraft(name string, rawArgs []byte, now time.Time) (*intent.Draft, error) {
	kind := intent.Kind(name)
	var args toolArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, fmt.Errorf("failed to decode arguments: %w", err)
		}
	}

	d := &intent.Draft{
		Kind:             kind,
		Title:            args.Title,
		Target:           intent.Ref{Title: args.Target},
		Milestone:        args.Milestone,
		EstimatedMinutes: args.EstimatedMinutes,
		Commit:           args.Commit,
		Uncommit:         args.Uncommit,
		Archive:          args.Archive,
	}
	if args.Objective != "" {
		d.ObjectiveRef = intent.Ref{Title: args.Objective}
	}
	if args.HasValue {
		v := args.Value
		d.Value = &v
	}
	if args.Period != "" {
		period, err := intent.NormalizePeriod(args.Period, now)
		if err != nil {
			return nil, err
		}
		d.Period = period
	}
	if args.Date != "" {
		date, err := intent.NormalizeDate(args.Date, now)
		if err != nil {
			return nil, err
		}
		d.Date = &date
	}
	if args.TimeRange != "" {
		start, end, err := intent.NormalizeTimeRange(args.TimeRange)
		if err != nil {
			return nil, err
		}
		d.StartMin, d.EndMin, d.HasTimeRange = start, end, true
	}
	if args.Area != "" {
		if area, err := intent.NormalizeArea(args.Area, intent.DefaultAreas()); err == nil {
			d.AreaID = area
		}
	}
	if kind == intent.KindSetCapacity {
		d.Capacity = &config.CapacityConfig{
			WorkHoursPerDay:    args.WorkHoursPerDay,
			BufferPercent:      args.BufferPercent,
			BreakMinutesPerDay: args.BreakMinutes,
			WorkDaysPerWeek:    args.WorkDaysPerWeek,
		}
	}

	switch kind {
	case intent.KindCreateTask, intent.KindUpdateTask, intent.KindCompleteTask,
		intent.KindDeleteTask, intent.KindCommitTask, intent.KindCreateObjective,
		intent.KindUpdateKeyResult, intent.KindProcessInbox, intent.KindCreateBlock,
		intent.KindDeleteBlock, intent.KindPlanWeek, intent.KindRebalanceWeek,
		intent.KindSetCapacity:
		return d, nil
	}
	return nil, fmt.Errorf("unknown function %q", name)
}

func functionCatalog() []openai.FunctionDefinitionParam {
	return []openai.FunctionDefinitionParam{
		{
			Name:        string(intent.KindCreateTask),
			Description: param.NewOpt("Create a new task, optionally with an estimate, due date, objective link, and a commitment to the current week."),
			Parameters: schema(map[string]any{
				"title":             str("Task title"),
				"estimated_minutes": integer("Estimated effort in minutes"),
				"date":              str("Due date as the user phrased it"),
				"objective":         str("Objective this task advances"),
				"area":              str("Life area, e.g. work, health"),
				"commit":            boolean("Whether to commit the task to the current week"),
			}, "title"),
		},
		{
			Name:        string(intent.KindUpdateTask),
			Description: param.NewOpt("Change an existing task's title, estimate, or due date."),
			Parameters: schema(map[string]any{
				"target":            str("Title or id of the task to change"),
				"title":             str("New title, if renaming"),
				"estimated_minutes": integer("New estimate in minutes"),
				"date":              str("New due date"),
			}, "target"),
		},
		{
			Name:        string(intent.KindCompleteTask),
			Description: param.NewOpt("Mark a task, or one milestone of a project, as done."),
			Parameters: schema(map[string]any{
				"target":    str("Title or id of the task"),
				"milestone": str("Milestone title, when completing a single milestone"),
			}, "target"),
		},
		{
			Name:        string(intent.KindDeleteTask),
			Description: param.NewOpt("Delete or archive a task."),
			Parameters: schema(map[string]any{
				"target":  str("Title or id of the task"),
				"archive": boolean("Archive instead of deleting"),
			}, "target"),
		},
		{
			Name:        string(intent.KindCommitTask),
			Description: param.NewOpt("Commit a task to the current week, or remove it from the week."),
			Parameters: schema(map[string]any{
				"target":   str("Title or id of the task"),
				"uncommit": boolean("Remove from the week instead of committing"),
			}, "target"),
		},
		{
			Name:        string(intent.KindCreateObjective),
			Description: param.NewOpt("Create a strategic objective for a period."),
			Parameters: schema(map[string]any{
				"title":  str("Objective title"),
				"period": str("Period as phrased, e.g. Q1 2026, first half 2026"),
				"area":   str("Life area"),
			}, "title"),
		},
		{
			Name:        string(intent.KindUpdateKeyResult),
			Description: param.NewOpt("Record a new current value for a key result."),
			Parameters: schema(map[string]any{
				"target":    str("Title or id of the key result"),
				"value":     number("New current value"),
				"has_value": boolean("Set true when a value was given"),
			}, "target"),
		},
		{
			Name:        string(intent.KindProcessInbox),
			Description: param.NewOpt("Turn an inbox capture into a real task."),
			Parameters: schema(map[string]any{
				"target":    str("Text or id of the inbox item"),
				"date":      str("Due date for the new task"),
				"objective": str("Objective to link the task to"),
				"commit":    boolean("Commit the new task to the current week"),
			}, "target"),
		},
		{
			Name:        string(intent.KindCreateBlock),
			Description: param.NewOpt("Reserve a calendar time block."),
			Parameters: schema(map[string]any{
				"title":      str("Block title"),
				"date":       str("Date as phrased"),
				"time_range": str("Time range, HH:MM-HH:MM"),
			}),
		},
		{
			Name:        string(intent.KindDeleteBlock),
			Description: param.NewOpt("Delete a calendar block."),
			Parameters: schema(map[string]any{
				"target": str("Title or id of the block"),
			}, "target"),
		},
		{
			Name:        string(intent.KindPlanWeek),
			Description: param.NewOpt("Build and propose a plan for the current week."),
			Parameters:  schema(map[string]any{}),
		},
		{
			Name:        string(intent.KindRebalanceWeek),
			Description: param.NewOpt("Move work out of an overloaded week."),
			Parameters:  schema(map[string]any{}),
		},
		{
			Name:        string(intent.KindSetCapacity),
			Description: param.NewOpt("Change weekly capacity settings. Only pass fields the user mentioned."),
			Parameters: schema(map[string]any{
				"work_hours_per_day":    integer("Working hours per day"),
				"buffer_percent":        integer("Buffer percentage, 0-50"),
				"break_minutes_per_day": integer("Break minutes per day"),
				"work_days_per_week":    integer("Working days per week"),
			}),
		},
	}
}

func toToolParams(tools []openai.FunctionDefinitionParam) []responses.ToolUnionParam {
	params := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
				Strict:      t.Strict,
			},
		})
	}
	return params
}

func userMessage(msg string) responses.ResponseInputItemUnionParam {
	return responses.ResponseInputItemUnionParam{
		OfMessage: &responses.EasyInputMessageParam{
			Role: responses.EasyInputMessageRoleUser,
			Type: responses.EasyInputMessageTypeMessage,
			Content: responses.EasyInputMessageContentUnionParam{
				OfString: param.NewOpt(msg),
			},
		},
	}
}

func schema(props map[string]any, required ...string) openai.FunctionParameters {
	s := openai.FunctionParameters{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func str(desc string) map[string]any     { return map[string]any{"type": "string", "description": desc} }
func integer(desc string) map[string]any { return map[string]any{"type": "integer", "description": desc} }
func number(desc string) map[string]any  { return map[string]any{"type": "number", "description": desc} }
func boolean(desc string) map[string]any { return map[string]any{"type": "boolean", "description": desc} }
