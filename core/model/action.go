package model

import (
	"encoding/json"
	"fmt"
)

// Action classifies a route's suggestion.
type Action int

const (
	ActionBalanced Action = iota
	ActionAdd
	ActionReallocate
)

// String returns the wire name of the action.
func (a Action) String() string {
	switch a {
	case ActionBalanced:
		return "balanced"
	case ActionAdd:
		return "add"
	case ActionReallocate:
		return "reallocate"
	default:
		return "unknown"
	}
}

// ParseAction converts a wire name back to an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "balanced":
		return ActionBalanced, nil
	case "add":
		return ActionAdd, nil
	case "reallocate":
		return ActionReallocate, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
