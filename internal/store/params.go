package store

import (
	"strconv"

	"github.com/usestring/pyroscope-mcp/internal/action"
	"github.com/usestring/pyroscope-mcp/internal/continuous"
	"github.com/usestring/pyroscope-mcp/internal/querysync"
)

// QueryParams returns the URL parameters bound to the continuous selection.
func QueryParams() []querysync.Param[RootState] {
	return []querysync.Param[RootState]{
		{
			Name:     "from",
			Default:  continuous.DefaultFrom,
			Selector: func(s RootState) string { return s.Continuous.From.String() },
			Action:   func(v string) action.Action { return continuous.SetFrom{Value: v} },
		},
		{
			Name:     "until",
			Default:  continuous.DefaultUntil,
			Selector: func(s RootState) string { return s.Continuous.Until.String() },
			Action:   func(v string) action.Action { return continuous.SetUntil{Value: v} },
		},
		{
			Name:     "leftFrom",
			Default:  continuous.DefaultLeftFrom,
			Selector: func(s RootState) string { return s.Continuous.LeftFrom.String() },
			Action:   func(v string) action.Action { return continuous.SetLeftFrom{Value: v} },
		},
		{
			Name:     "leftUntil",
			Default:  continuous.DefaultLeftUntil,
			Selector: func(s RootState) string { return s.Continuous.LeftUntil.String() },
			Action:   func(v string) action.Action { return continuous.SetLeftUntil{Value: v} },
		},
		{
			Name:     "rightFrom",
			Default:  continuous.DefaultRightFrom,
			Selector: func(s RootState) string { return s.Continuous.RightFrom.String() },
			Action:   func(v string) action.Action { return continuous.SetRightFrom{Value: v} },
		},
		{
			Name:     "rightUntil",
			Default:  continuous.DefaultRightUntil,
			Selector: func(s RootState) string { return s.Continuous.RightUntil.String() },
			Action:   func(v string) action.Action { return continuous.SetRightUntil{Value: v} },
		},
		{
			Name:     "query",
			Default:  continuous.DefaultQuery,
			Selector: func(s RootState) string { return s.Continuous.Query },
			Action:   func(v string) action.Action { return continuous.SetQuery{Value: v} },
		},
		{
			Name:     "maxNodes",
			Default:  strconv.Itoa(continuous.DefaultMaxNodes),
			Selector: func(s RootState) string { return continuous.SelectMaxNodes(s.Continuous) },
			Action:   func(v string) action.Action { return continuous.SetMaxNodes{Value: v} },
		},
	}
}
