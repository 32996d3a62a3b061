package preview

import (
	"fmt"
	"strings"

	"github.com/ledeberg/tiller/internal/domain/intent"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/task"
)

// resolution is the outcome of a reference lookup: exactly one match, or a
// non-actionable explanation. The builder never guesses between candidates.
type resolution[T any] struct {
	match      *T
	failure    string
	candidates []string
}

func (r resolution[T]) failed() bool { return r.match == nil }

// resolveByTitle runs the id → exact title → substring cascade over items.
func resolveByTitle[T any](ref intent.Ref, items []T, id func(T) string, title func(T) string, entity string) resolution[T] {
	if ref.ID != "" {
		for i := range items {
			if id(items[i]) == ref.ID {
				return resolution[T]{match: &items[i]}
			}
		}
		return resolution[T]{failure: fmt.Sprintf("No %s with id %q exists.", entity, ref.ID)}
	}

	needle := strings.ToLower(strings.TrimSpace(ref.Title))
	if needle == "" {
		return resolution[T]{failure: fmt.Sprintf("I need a title or id to find the %s.", entity)}
	}

	var exact []int
	var partial []int
	for i := range items {
		t := strings.ToLower(title(items[i]))
		if t == needle {
			exact = append(exact, i)
		} else if strings.Contains(t, needle) {
			partial = append(partial, i)
		}
	}

	hits := exact
	if len(hits) == 0 {
		hits = partial
	}

	switch len(hits) {
	case 0:
		return resolution[T]{failure: fmt.Sprintf("I couldn't find a %s matching %q.", entity, ref.Title)}
	case 1:
		return resolution[T]{match: &items[hits[0]]}
	default:
		names := make([]string, 0, len(hits))
		for _, i := range hits {
			names = append(names, fmt.Sprintf("%s (%s)", title(items[i]), id(items[i])))
		}
		return resolution[T]{
			failure:    fmt.Sprintf("%q matches %d items; tell me which one.", ref.Title, len(hits)),
			candidates: names,
		}
	}
}

func (b *Builder) resolveTask(ref intent.Ref) resolution[task.Task] {
	var live []task.Task
	for _, t := range b.snap.Tasks {
		if t.Status != task.StatusArchived {
			live = append(live, t)
		}
	}
	return resolveByTitle(ref, live,
		func(t task.Task) string { return t.ID },
		func(t task.Task) string { return t.Title },
		"task")
}

func (b *Builder) resolveObjective(ref intent.Ref) resolution[objective.Objective] {
	return resolveByTitle(ref, b.snap.Objectives,
		func(o objective.Objective) string { return o.ID },
		func(o objective.Objective) string { return o.Title },
		"objective")
}

func (b *Builder) resolveKeyResult(ref intent.Ref) resolution[objective.KeyResult] {
	return resolveByTitle(ref, b.snap.KeyResults,
		func(kr objective.KeyResult) string { return kr.ID },
		func(kr objective.KeyResult) string { return kr.Title },
		"key result")
}

func (b *Builder) resolveInboxItem(ref intent.Ref) resolution[task.InboxItem] {
	var open []task.InboxItem
	for _, item := range b.snap.Inbox {
		if !item.Processed {
			open = append(open, item)
		}
	}
	return resolveByTitle(ref, open,
		func(i task.InboxItem) string { return i.ID },
		func(i task.InboxItem) string { return i.Text },
		"inbox item")
}

func (b *Builder) resolveBlock(ref intent.Ref) resolution[task.CalendarBlock] {
	return resolveByTitle(ref, b.snap.Blocks,
		func(bl task.CalendarBlock) string { return bl.ID },
		func(bl task.CalendarBlock) string { return bl.Title },
		"calendar block")
}
