// Package continuous holds the state of the continuous-profiling single view:
// the selected time ranges and query, and the fetch lifecycles of the
// rendered profile and of the label list.
//
// State only changes through Reduce. The Fetcher drives the fetch lifecycles
// by dispatching pending, fulfilled and rejected actions.
package continuous

import (
	"strconv"

	"github.com/usestring/pyroscope-mcp/pkg/attime"
)

// Default values of the selection fields.
const (
	DefaultFrom       = "now-1h"
	DefaultUntil      = "now"
	DefaultLeftFrom   = "now-1h"
	DefaultLeftUntil  = "now-30m"
	DefaultRightFrom  = "now-30m"
	DefaultRightUntil = "now"
	DefaultQuery      = ""
	DefaultMaxNodes   = 1024
)

var (
	defaultFrom       = attime.MustParse(DefaultFrom)
	defaultUntil      = attime.MustParse(DefaultUntil)
	defaultLeftFrom   = attime.MustParse(DefaultLeftFrom)
	defaultLeftUntil  = attime.MustParse(DefaultLeftUntil)
	defaultRightFrom  = attime.MustParse(DefaultRightFrom)
	defaultRightUntil = attime.MustParse(DefaultRightUntil)
)

// State is the continuous slice.
type State struct {
	From       attime.Point `json:"from"`
	Until      attime.Point `json:"until"`
	LeftFrom   attime.Point `json:"leftFrom"`
	LeftUntil  attime.Point `json:"leftUntil"`
	RightFrom  attime.Point `json:"rightFrom"`
	RightUntil attime.Point `json:"rightUntil"`
	Query      string       `json:"query"`
	MaxNodes   int          `json:"maxNodes"`

	// RefreshToken changes whenever a re-render of unchanged parameters is
	// requested.
	RefreshToken string `json:"refreshToken,omitempty"`

	SingleView SingleView `json:"singleView"`
	Tags       Tags       `json:"tags"`

	fence fence
}

// fence holds the latest request id issued per resource. Results carrying
// any other id are stale.
type fence struct {
	singleView uint64
	tags       uint64
	tagValues  map[string]uint64
}

func (f fence) withTagValues(label string, id uint64) fence {
	m := make(map[string]uint64, len(f.tagValues)+1)
	for k, v := range f.tagValues {
		m[k] = v
	}
	m[label] = id
	f.tagValues = m
	return f
}

// InitialState returns the state at application start.
func InitialState() State {
	return State{
		From:       defaultFrom,
		Until:      defaultUntil,
		LeftFrom:   defaultLeftFrom,
		LeftUntil:  defaultLeftUntil,
		RightFrom:  defaultRightFrom,
		RightUntil: defaultRightUntil,
		Query:      DefaultQuery,
		MaxNodes:   DefaultMaxNodes,
		SingleView: SingleViewPristine{},
		Tags:       TagsPristine{Set: NewLabelSet()},
	}
}

// ParseMaxNodes parses a node limit, falling back to DefaultMaxNodes when s
// is not a positive integer.
func ParseMaxNodes(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return DefaultMaxNodes
	}
	return n
}

// SelectLabelsList returns the known label names in server order.
func SelectLabelsList(s State) []string {
	if s.Tags == nil {
		return []string{}
	}
	return s.Tags.Labels().Names()
}

// SelectMaxNodes returns the node limit as it appears in a URL.
func SelectMaxNodes(s State) string {
	return strconv.Itoa(s.MaxNodes)
}
