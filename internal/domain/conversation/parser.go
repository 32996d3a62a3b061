package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/intent"
)

// Parser turns a user message into an intent draft. ok is false when the
// message was not recognized as a request.
type Parser interface {
	Parse(ctx context.Context, text string, now time.Time) (draft *intent.Draft, ok bool, err error)
}

// KeywordParser is the deterministic fallback parser. It recognizes a fixed
// set of English and Spanish phrasings; anything it cannot place becomes a
// help response upstream.
type KeywordParser struct{}

func NewKeywordParser() *KeywordParser { return &KeywordParser{} }

var (
	estimateRe   = regexp.MustCompile(`(\d+)\s*(?:min|mins|minutes|minutos)\b`)
	hoursRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hours?|horas?)\b`)
	workHoursRe  = regexp.MustCompile(`(?:work|working)\s+hours?\s+(?:to|a)\s+(\d+)`)
	bufferRe     = regexp.MustCompile(`buffer\s+(?:to|of|a)?\s*(\d+)\s*%?`)
	krValueRe    = regexp.MustCompile(`^(?:update|set)\s+(?:kr|key result|progress (?:on|of))\s+(.+?)\s+(?:to|a)\s+([\d.]+)\s*$`)
	renameRe     = regexp.MustCompile(`^rename\s+(.+?)\s+to\s+(.+)$`)
	milestoneRe  = regexp.MustCompile(`^(?:complete|finish|done with)\s+milestone\s+(.+?)\s+(?:on|of|for)\s+(.+)$`)
	timeRangeRe  = regexp.MustCompile(`\b\d{1,2}(?::\d{2})?\s*(?:-|–|to)\s*\d{1,2}(?::\d{2})?\b`)
	dateTokenRe  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|today|tomorrow|hoy|mañana|manana|next week|monday|tuesday|wednesday|thursday|friday|saturday|sunday|lunes|martes|miércoles|miercoles|jueves|viernes|sábado|sabado|domingo)\b`)
	forClauseRe  = regexp.MustCompile(`\bfor\s+(.+)$`)
	dueClauseRe  = regexp.MustCompile(`\b(?:due|by|para el|para)\s+(.+)$`)
)

func (p *KeywordParser) Parse(_ context.Context, text string, now time.Time) (*intent.Draft, bool, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil, false, nil
	}

	switch {
	case containsAny(t, "plan my week", "plan the week", "plan this week", "plan week", "planifica"):
		return &intent.Draft{Kind: intent.KindPlanWeek}, true, nil

	case containsAny(t, "rebalance", "reequilibra", "rebalancea"):
		return &intent.Draft{Kind: intent.KindRebalanceWeek}, true, nil
	}

	if d, ok := p.parseCapacity(t); ok {
		return d, true, nil
	}
	if m := krValueRe.FindStringSubmatch(t); m != nil {
		v, err := strconv.ParseFloat(m[2], 64)
		if err == nil {
			return &intent.Draft{Kind: intent.KindUpdateKeyResult, Target: intent.Ref{Title: m[1]}, Value: &v}, true, nil
		}
	}
	if m := milestoneRe.FindStringSubmatch(t); m != nil {
		return &intent.Draft{Kind: intent.KindCompleteTask, Target: intent.Ref{Title: m[2]}, Milestone: m[1]}, true, nil
	}
	if m := renameRe.FindStringSubmatch(t); m != nil {
		return &intent.Draft{Kind: intent.KindUpdateTask, Target: intent.Ref{Title: m[1]}, Title: m[2]}, true, nil
	}

	if rest, ok := stripPrefix(t, "new objective", "create objective", "add objective", "nuevo objetivo", "objetivo nuevo"); ok {
		return p.parseObjective(rest, now), true, nil
	}
	if rest, ok := stripPrefix(t, "block", "reserve", "bloquea"); ok {
		return p.parseBlock(rest, now), true, nil
	}
	if rest, ok := stripPrefix(t, "delete block", "remove block", "elimina el bloque", "elimina bloque"); ok {
		return &intent.Draft{Kind: intent.KindDeleteBlock, Target: intent.Ref{Title: rest}}, true, nil
	}
	if rest, ok := stripPrefix(t, "process inbox item", "process inbox", "procesa", "inbox"); ok {
		d := &intent.Draft{Kind: intent.KindProcessInbox, Target: intent.Ref{Title: rest}}
		d.Commit = strings.Contains(t, "this week") || strings.Contains(t, "esta semana")
		return d, true, nil
	}
	if rest, ok := stripPrefix(t, "complete", "finish", "done with", "mark done", "terminé", "termine"); ok {
		return &intent.Draft{Kind: intent.KindCompleteTask, Target: intent.Ref{Title: rest}}, true, nil
	}
	if rest, ok := stripPrefix(t, "archive task", "archive", "archiva"); ok {
		return &intent.Draft{Kind: intent.KindDeleteTask, Target: intent.Ref{Title: rest}, Archive: true}, true, nil
	}
	if rest, ok := stripPrefix(t, "delete task", "delete", "remove task", "elimina", "borra"); ok {
		return &intent.Draft{Kind: intent.KindDeleteTask, Target: intent.Ref{Title: rest}}, true, nil
	}
	if rest, ok := stripPrefix(t, "uncommit", "descompromete"); ok {
		return &intent.Draft{Kind: intent.KindCommitTask, Target: intent.Ref{Title: rest}, Uncommit: true}, true, nil
	}
	if rest, ok := stripPrefix(t, "move"); ok {
		if cut, found := cutSuffix(rest, "out of this week", "off this week", "fuera de esta semana"); found {
			return &intent.Draft{Kind: intent.KindCommitTask, Target: intent.Ref{Title: cut}, Uncommit: true}, true, nil
		}
	}
	if rest, ok := stripPrefix(t, "commit", "comprometo", "compromete"); ok {
		rest, _ = cutSuffix(rest, "to this week", "this week", "a esta semana", "esta semana")
		return &intent.Draft{Kind: intent.KindCommitTask, Target: intent.Ref{Title: rest}}, true, nil
	}
	if rest, ok := stripPrefix(t, "add task", "add a task", "new task", "create task", "create a task", "nueva tarea", "agrega tarea", "agrega", "add"); ok {
		return p.parseCreateTask(rest, now), true, nil
	}

	return nil, false, nil
}

func (p *KeywordParser) parseCapacity(t string) (*intent.Draft, bool) {
	if !containsAny(t, "capacity", "work hours", "working hours", "buffer", "capacidad") {
		return nil, false
	}
	if !containsAny(t, "set", "change", "update", "cambia", "ajusta") {
		return nil, false
	}

	var override config.CapacityConfig
	matched := false
	if m := workHoursRe.FindStringSubmatch(t); m != nil {
		override.WorkHoursPerDay, _ = strconv.Atoi(m[1])
		matched = true
	}
	if m := bufferRe.FindStringSubmatch(t); m != nil {
		override.BufferPercent, _ = strconv.Atoi(m[1])
		matched = true
	}
	if !matched {
		return nil, false
	}
	return &intent.Draft{Kind: intent.KindSetCapacity, Capacity: &override}, true
}

func (p *KeywordParser) parseObjective(rest string, now time.Time) *intent.Draft {
	d := &intent.Draft{Kind: intent.KindCreateObjective}
	title := rest
	if m := forClauseRe.FindStringSubmatch(rest); m != nil {
		if period, err := intent.NormalizePeriod(m[1], now); err == nil {
			d.Period = period
			title = strings.TrimSpace(strings.TrimSuffix(rest, m[0]))
		}
	}
	d.Title = strings.Trim(title, `"' `)
	return d
}

func (p *KeywordParser) parseBlock(rest string, now time.Time) *intent.Draft {
	d := &intent.Draft{Kind: intent.KindCreateBlock}

	if m := timeRangeRe.FindString(rest); m != "" {
		if start, end, err := intent.NormalizeTimeRange(m); err == nil {
			d.StartMin, d.EndMin, d.HasTimeRange = start, end, true
			rest = strings.Replace(rest, m, "", 1)
		}
	}
	if m := dateTokenRe.FindString(rest); m != "" {
		if date, err := intent.NormalizeDate(m, now); err == nil {
			d.Date = &date
			rest = strings.Replace(rest, m, "", 1)
		}
	}
	if m := forClauseRe.FindStringSubmatch(rest); m != nil {
		d.Title = strings.Trim(m[1], `"' `)
	} else if title := strings.Trim(rest, `"' `); title != "" {
		d.Title = title
	}
	return d
}

func (p *KeywordParser) parseCreateTask(rest string, now time.Time) *intent.Draft {
	d := &intent.Draft{Kind: intent.KindCreateTask}

	if containsAny(rest, "this week", "esta semana") {
		d.Commit = true
		rest, _ = cutSuffix(rest, "this week", "esta semana")
	}
	if m := dueClauseRe.FindStringSubmatch(rest); m != nil {
		if date, err := intent.NormalizeDate(m[1], now); err == nil {
			d.Date = &date
			rest = strings.TrimSpace(strings.TrimSuffix(rest, m[0]))
		}
	}
	if m := estimateRe.FindStringSubmatch(rest); m != nil {
		d.EstimatedMinutes, _ = strconv.Atoi(m[1])
		rest = strings.Replace(rest, m[0], "", 1)
	} else if m := hoursRe.FindStringSubmatch(rest); m != nil {
		if h, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.EstimatedMinutes = int(h * 60)
			rest = strings.Replace(rest, m[0], "", 1)
		}
	}

	d.Title = strings.Trim(strings.TrimSpace(rest), `"',. `)
	return d
}

func stripPrefix(t string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if t == p {
			return "", true
		}
		if strings.HasPrefix(t, p+" ") {
			return strings.TrimSpace(t[len(p):]), true
		}
	}
	return "", false
}

func cutSuffix(t string, suffixes ...string) (string, bool) {
	for _, s := range suffixes {
		if strings.HasSuffix(t, s) {
			return strings.Trim(strings.TrimSpace(t[:len(t)-len(s)]), `"', `), true
		}
	}
	return strings.TrimSpace(t), false
}

func containsAny(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
