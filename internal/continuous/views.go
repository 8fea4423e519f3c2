package continuous

import (
	"encoding/json"
	"fmt"

	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Variant names, as they appear in JSON.
const (
	StatusPristine  = "pristine"
	StatusLoading   = "loading"
	StatusLoaded    = "loaded"
	StatusReloading = "reloading"
	StatusFailed    = "failed"
)

// SingleView is the lifecycle of the rendered profile. It is one of
// SingleViewPristine, SingleViewLoading, SingleViewLoaded or
// SingleViewReloading. Use MatchSingleView to branch on it.
type SingleView interface {
	Status() string
	singleView()
}

// SingleViewPristine means no fetch has been attempted, or the last first-time
// fetch failed.
type SingleViewPristine struct{}

// SingleViewLoading means the first fetch is in flight.
type SingleViewLoading struct{}

// SingleViewLoaded holds the result of the last successful fetch.
type SingleViewLoaded struct {
	Timeline client.Timeline
	Profile  client.Profile
}

// SingleViewReloading means a fetch is in flight while the previous result is
// still displayable.
type SingleViewReloading struct {
	Timeline client.Timeline
	Profile  client.Profile
}

func (SingleViewPristine) singleView()  {}
func (SingleViewLoading) singleView()   {}
func (SingleViewLoaded) singleView()    {}
func (SingleViewReloading) singleView() {}

func (SingleViewPristine) Status() string  { return StatusPristine }
func (SingleViewLoading) Status() string   { return StatusLoading }
func (SingleViewLoaded) Status() string    { return StatusLoaded }
func (SingleViewReloading) Status() string { return StatusReloading }

// MatchSingleView calls the function matching the variant of v and returns its
// result. A nil v is treated as pristine. Every variant needs a handler, so
// adding a variant breaks every call site until it is handled.
func MatchSingleView[T any](
	v SingleView,
	pristine func(SingleViewPristine) T,
	loading func(SingleViewLoading) T,
	loaded func(SingleViewLoaded) T,
	reloading func(SingleViewReloading) T,
) T {
	switch v := v.(type) {
	case nil:
		return pristine(SingleViewPristine{})
	case SingleViewPristine:
		return pristine(v)
	case SingleViewLoading:
		return loading(v)
	case SingleViewLoaded:
		return loaded(v)
	case SingleViewReloading:
		return reloading(v)
	default:
		panic(fmt.Sprintf("continuous: unknown single view variant %T", v))
	}
}

// ViewData returns the displayable data of v, if any.
func ViewData(v SingleView) (client.Timeline, client.Profile, bool) {
	type data struct {
		timeline client.Timeline
		profile  client.Profile
		ok       bool
	}
	d := MatchSingleView(v,
		func(SingleViewPristine) data { return data{} },
		func(SingleViewLoading) data { return data{} },
		func(l SingleViewLoaded) data { return data{l.Timeline, l.Profile, true} },
		func(r SingleViewReloading) data { return data{r.Timeline, r.Profile, true} },
	)
	return d.timeline, d.profile, d.ok
}

type singleViewJSON struct {
	Type     string           `json:"type"`
	Timeline *client.Timeline `json:"timeline,omitempty"`
	Profile  *client.Profile  `json:"profile,omitempty"`
}

func (v SingleViewPristine) MarshalJSON() ([]byte, error) {
	return json.Marshal(singleViewJSON{Type: v.Status()})
}

func (v SingleViewLoading) MarshalJSON() ([]byte, error) {
	return json.Marshal(singleViewJSON{Type: v.Status()})
}

func (v SingleViewLoaded) MarshalJSON() ([]byte, error) {
	return json.Marshal(singleViewJSON{Type: v.Status(), Timeline: &v.Timeline, Profile: &v.Profile})
}

func (v SingleViewReloading) MarshalJSON() ([]byte, error) {
	return json.Marshal(singleViewJSON{Type: v.Status(), Timeline: &v.Timeline, Profile: &v.Profile})
}

// LabelSet maps label names to their known values, preserving the order in
// which the server listed the names. The zero value is an empty set. A
// LabelSet is never mutated in place; With returns a modified copy.
type LabelSet struct {
	names  []string
	values map[string][]string
}

// NewLabelSet returns a set with one entry per name and no known values.
// Duplicate names are kept once.
func NewLabelSet(names ...string) LabelSet {
	s := LabelSet{
		names:  make([]string, 0, len(names)),
		values: make(map[string][]string, len(names)),
	}
	for _, n := range names {
		if _, dup := s.values[n]; dup {
			continue
		}
		s.names = append(s.names, n)
		s.values[n] = []string{}
	}
	return s
}

// Names returns the label names in server order.
func (s LabelSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Values returns the known values of label.
func (s LabelSet) Values(label string) ([]string, bool) {
	v, ok := s.values[label]
	return v, ok
}

// Has reports whether label is in the set.
func (s LabelSet) Has(label string) bool {
	_, ok := s.values[label]
	return ok
}

// Len returns the number of labels.
func (s LabelSet) Len() int {
	return len(s.names)
}

// With returns a copy of s where label has the given values. A label not yet
// in s is appended.
func (s LabelSet) With(label string, values []string) LabelSet {
	out := LabelSet{
		names:  make([]string, len(s.names), len(s.names)+1),
		values: make(map[string][]string, len(s.values)+1),
	}
	copy(out.names, s.names)
	for k, v := range s.values {
		out.values[k] = v
	}
	if _, ok := out.values[label]; !ok {
		out.names = append(out.names, label)
	}
	vs := make([]string, len(values))
	copy(vs, values)
	out.values[label] = vs
	return out
}

// Map returns a copy of the set as a plain map.
func (s LabelSet) Map() map[string][]string {
	out := make(map[string][]string, len(s.values))
	for k, v := range s.values {
		vs := make([]string, len(v))
		copy(vs, v)
		out[k] = vs
	}
	return out
}

// MarshalJSON encodes the set as an object of label to values.
func (s LabelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// Tags is the lifecycle of the label list. It is one of TagsPristine,
// TagsLoading, TagsLoaded or TagsFailed; every variant carries the labels
// learned so far. Use MatchTags to branch on it.
type Tags interface {
	Status() string
	Labels() LabelSet
	tags()
}

// TagsPristine means no label list has been requested.
type TagsPristine struct{ Set LabelSet }

// TagsLoading means a label list request is in flight.
type TagsLoading struct{ Set LabelSet }

// TagsLoaded means the last label list request succeeded.
type TagsLoaded struct{ Set LabelSet }

// TagsFailed means the last label list request failed.
type TagsFailed struct{ Set LabelSet }

func (TagsPristine) tags() {}
func (TagsLoading) tags()  {}
func (TagsLoaded) tags()   {}
func (TagsFailed) tags()   {}

func (TagsPristine) Status() string { return StatusPristine }
func (TagsLoading) Status() string  { return StatusLoading }
func (TagsLoaded) Status() string   { return StatusLoaded }
func (TagsFailed) Status() string   { return StatusFailed }

func (t TagsPristine) Labels() LabelSet { return t.Set }
func (t TagsLoading) Labels() LabelSet  { return t.Set }
func (t TagsLoaded) Labels() LabelSet   { return t.Set }
func (t TagsFailed) Labels() LabelSet   { return t.Set }

// MatchTags calls the function matching the variant of t and returns its
// result. A nil t is treated as pristine with no labels.
func MatchTags[T any](
	t Tags,
	pristine func(TagsPristine) T,
	loading func(TagsLoading) T,
	loaded func(TagsLoaded) T,
	failed func(TagsFailed) T,
) T {
	switch t := t.(type) {
	case nil:
		return pristine(TagsPristine{})
	case TagsPristine:
		return pristine(t)
	case TagsLoading:
		return loading(t)
	case TagsLoaded:
		return loaded(t)
	case TagsFailed:
		return failed(t)
	default:
		panic(fmt.Sprintf("continuous: unknown tags variant %T", t))
	}
}

// withLabels returns t with its label set replaced, keeping the variant.
func withLabels(t Tags, set LabelSet) Tags {
	return MatchTags(t,
		func(TagsPristine) Tags { return TagsPristine{Set: set} },
		func(TagsLoading) Tags { return TagsLoading{Set: set} },
		func(TagsLoaded) Tags { return TagsLoaded{Set: set} },
		func(TagsFailed) Tags { return TagsFailed{Set: set} },
	)
}

type tagsJSON struct {
	Type string   `json:"type"`
	Tags LabelSet `json:"tags"`
}

func (t TagsPristine) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagsJSON{Type: t.Status(), Tags: t.Set})
}

func (t TagsLoading) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagsJSON{Type: t.Status(), Tags: t.Set})
}

func (t TagsLoaded) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagsJSON{Type: t.Status(), Tags: t.Set})
}

func (t TagsFailed) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagsJSON{Type: t.Status(), Tags: t.Set})
}
