package model

import "strings"

// LeadsMode selects what the leads command does with the recent-leads query.
type LeadsMode string

const (
	ModeList       LeadsMode = "list"
	ModeDeleteDemo LeadsMode = "delete-demo"
)

func (m LeadsMode) String() string { return string(m) }

// ParseLeadsMode normalizes input; empty => list.
// Returns (value, true) if valid; otherwise (list, false).
func ParseLeadsMode(s string) (LeadsMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "list":
		return ModeList, true
	case "delete-demo":
		return ModeDeleteDemo, true
	default:
		return ModeList, false
	}
}
