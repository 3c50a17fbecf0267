package services

import (
	"strings"
)

// TaskMatcher decides whether an open task relates to a checklist item.
// The heuristic is pluggable because text matching is inherently fuzzy;
// swapping the strategy must not touch the closure orchestration.
type TaskMatcher interface {
	Matches(itemTitle, taskTitle, taskDescription string) bool
}

// SubstringMatcher matches when the checklist item title appears as a
// case-insensitive substring of the task title or description.
type SubstringMatcher struct{}

func (SubstringMatcher) Matches(itemTitle, taskTitle, taskDescription string) bool {
	needle := strings.ToLower(itemTitle)
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(taskTitle), needle) ||
		strings.Contains(strings.ToLower(taskDescription), needle)
}
