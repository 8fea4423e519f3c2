package tools

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type labelsOutput struct {
	Labels []string `json:"labels"`
}

type labelsOmitEmpty struct {
	Labels []string `json:"labels,omitempty"`
}

type labelsOmitZero struct {
	Labels []string `json:"labels,omitzero"`
}

type labelsPointer struct {
	Labels *[]string `json:"labels"`
}

type rawProfile struct {
	Profile json.RawMessage `json:"profile,omitempty"`
}

type rawSamples struct {
	Samples []json.RawMessage `json:"samples,omitzero"`
}

type nestedRaw struct {
	View struct {
		Flamebearer json.RawMessage `json:"flamebearer,omitempty"`
	} `json:"view"`
}

type rawInMap struct {
	ByLabel map[string]json.RawMessage `json:"by_label,omitempty"`
}

type anyValues struct {
	Values []any `json:"values,omitzero"`
}

type scalarsOnly struct {
	Query    string `json:"query"`
	MaxNodes int    `json:"max_nodes"`
}

func TestCheckOutputSchema(t *testing.T) {
	tests := []struct {
		name   string
		check  func()
		panics bool
	}{
		{"nil slice", func() { CheckOutputSchema[labelsOutput]("t") }, true},
		{"omitempty slice", func() { CheckOutputSchema[labelsOmitEmpty]("t") }, false},
		{"omitzero slice", func() { CheckOutputSchema[labelsOmitZero]("t") }, false},
		{"pointer to slice", func() { CheckOutputSchema[labelsPointer]("t") }, false},
		{"pointer output", func() { CheckOutputSchema[*labelsOmitEmpty]("t") }, false},
		{"raw message", func() { CheckOutputSchema[rawProfile]("t") }, true},
		{"raw message slice", func() { CheckOutputSchema[rawSamples]("t") }, true},
		{"nested raw message", func() { CheckOutputSchema[nestedRaw]("t") }, true},
		{"raw message map value", func() { CheckOutputSchema[rawInMap]("t") }, true},
		{"any slice", func() { CheckOutputSchema[anyValues]("t") }, false},
		{"scalars", func() { CheckOutputSchema[scalarsOnly]("t") }, false},
		{"untyped any", func() { CheckOutputSchema[any]("t") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.panics {
				assert.Panics(t, tt.check)
			} else {
				assert.NotPanics(t, tt.check)
			}
		})
	}
}

func TestRawMessageProblem_NamesPaths(t *testing.T) {
	msg := rawMessageProblem(reflectTypeOf[nestedRaw]())
	assert.Contains(t, msg, "View.Flamebearer")

	msg = rawMessageProblem(reflectTypeOf[rawInMap]())
	assert.Contains(t, msg, "ByLabel.[value]")

	assert.Empty(t, rawMessageProblem(reflectTypeOf[scalarsOnly]()))
}

func TestCheckOutputSchema_registeredOutputs(t *testing.T) {
	assert.NotPanics(t, func() {
		CheckOutputSchema[ViewStateOutput]("pyroscope_view_state")
		CheckOutputSchema[SelectionOutput]("pyroscope_set_time_range")
		CheckOutputSchema[NavigateOutput]("pyroscope_navigate")
		CheckOutputSchema[HistoryOutput]("pyroscope_history")
		CheckOutputSchema[FetchSingleViewOutput]("pyroscope_fetch_single_view")
		CheckOutputSchema[FetchTagsOutput]("pyroscope_fetch_tags")
		CheckOutputSchema[FetchTagValuesOutput]("pyroscope_fetch_tag_values")
		CheckOutputSchema[QueryProfileOutput]("pyroscope_query_profile")
		CheckOutputSchema[NotificationsOutput]("pyroscope_notifications")
		CheckOutputSchema[UISettings]("pyroscope_ui_settings")
	})
}

func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
