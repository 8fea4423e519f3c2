package continuous

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/usestring/pyroscope-mcp/pkg/client"
)

// Action type names.
const (
	TypeSetFrom       = "continuous/setFrom"
	TypeSetUntil      = "continuous/setUntil"
	TypeSetLeftFrom   = "continuous/setLeftFrom"
	TypeSetLeftUntil  = "continuous/setLeftUntil"
	TypeSetRightFrom  = "continuous/setRightFrom"
	TypeSetRightUntil = "continuous/setRightUntil"
	TypeSetQuery      = "continuous/setQuery"
	TypeSetMaxNodes   = "continuous/setMaxNodes"
	TypeSetDateRange  = "continuous/setDateRange"
	TypeRefresh       = "continuous/refresh"

	TypeSingleViewPending   = "continuous/singleView/pending"
	TypeSingleViewFulfilled = "continuous/singleView/fulfilled"
	TypeSingleViewRejected  = "continuous/singleView/rejected"

	TypeTagsPending   = "continuous/fetchTags/pending"
	TypeTagsFulfilled = "continuous/fetchTags/fulfilled"
	TypeTagsRejected  = "continuous/fetchTags/rejected"

	TypeTagValuesPending   = "continuous/fetchTagsValues/pending"
	TypeTagValuesFulfilled = "continuous/fetchTagsValues/fulfilled"
	TypeTagValuesRejected  = "continuous/fetchTagsValues/rejected"
)

// SetFrom sets the start of the primary range.
type SetFrom struct {
	Value string `json:"value"`
}

// SetUntil sets the end of the primary range.
type SetUntil struct {
	Value string `json:"value"`
}

// SetLeftFrom sets the start of the left comparison range.
type SetLeftFrom struct {
	Value string `json:"value"`
}

// SetLeftUntil sets the end of the left comparison range.
type SetLeftUntil struct {
	Value string `json:"value"`
}

// SetRightFrom sets the start of the right comparison range.
type SetRightFrom struct {
	Value string `json:"value"`
}

// SetRightUntil sets the end of the right comparison range.
type SetRightUntil struct {
	Value string `json:"value"`
}

// SetQuery sets the profiling query.
type SetQuery struct {
	Value string `json:"value"`
}

// SetMaxNodes sets the node limit from its string form.
type SetMaxNodes struct {
	Value string `json:"value"`
}

// SetDateRange sets both bounds of the primary range in one step.
type SetDateRange struct {
	From  string `json:"from"`
	Until string `json:"until"`
}

// Refresh requests a re-render of the current selection.
type Refresh struct {
	Token string `json:"token"`
}

// NewRefresh returns a Refresh with a random token.
func NewRefresh() Refresh {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return Refresh{Token: hex.EncodeToString(b)}
}

func (SetFrom) Type() string       { return TypeSetFrom }
func (SetUntil) Type() string      { return TypeSetUntil }
func (SetLeftFrom) Type() string   { return TypeSetLeftFrom }
func (SetLeftUntil) Type() string  { return TypeSetLeftUntil }
func (SetRightFrom) Type() string  { return TypeSetRightFrom }
func (SetRightUntil) Type() string { return TypeSetRightUntil }
func (SetQuery) Type() string      { return TypeSetQuery }
func (SetMaxNodes) Type() string   { return TypeSetMaxNodes }
func (SetDateRange) Type() string  { return TypeSetDateRange }
func (Refresh) Type() string       { return TypeRefresh }

// SingleViewPending starts a single view fetch.
type SingleViewPending struct {
	RequestID uint64 `json:"requestId"`
}

// SingleViewFulfilled completes a single view fetch.
type SingleViewFulfilled struct {
	RequestID uint64              `json:"requestId"`
	Output    client.RenderOutput `json:"output"`
}

// SingleViewRejected fails a single view fetch.
type SingleViewRejected struct {
	RequestID uint64 `json:"requestId"`
	Error     error  `json:"-"`
}

// TagsPending starts a label list fetch.
type TagsPending struct {
	RequestID uint64 `json:"requestId"`
}

// TagsFulfilled completes a label list fetch.
type TagsFulfilled struct {
	RequestID uint64   `json:"requestId"`
	Labels    []string `json:"labels"`
}

// TagsRejected fails a label list fetch.
type TagsRejected struct {
	RequestID uint64 `json:"requestId"`
	Error     error  `json:"-"`
}

// TagValuesPending starts a label values fetch.
type TagValuesPending struct {
	RequestID uint64 `json:"requestId"`
	Label     string `json:"label"`
}

// TagValuesFulfilled completes a label values fetch.
type TagValuesFulfilled struct {
	RequestID uint64   `json:"requestId"`
	Label     string   `json:"label"`
	Values    []string `json:"values"`
}

// TagValuesRejected fails a label values fetch.
type TagValuesRejected struct {
	RequestID uint64 `json:"requestId"`
	Label     string `json:"label"`
	Error     error  `json:"-"`
}

func (SingleViewPending) Type() string   { return TypeSingleViewPending }
func (SingleViewFulfilled) Type() string { return TypeSingleViewFulfilled }
func (SingleViewRejected) Type() string  { return TypeSingleViewRejected }
func (TagsPending) Type() string         { return TypeTagsPending }
func (TagsFulfilled) Type() string       { return TypeTagsFulfilled }
func (TagsRejected) Type() string        { return TypeTagsRejected }
func (TagValuesPending) Type() string    { return TypeTagValuesPending }
func (TagValuesFulfilled) Type() string  { return TypeTagValuesFulfilled }
func (TagValuesRejected) Type() string   { return TypeTagValuesRejected }

func (a SingleViewRejected) Err() error { return a.Error }
func (a TagsRejected) Err() error       { return a.Error }
func (a TagValuesRejected) Err() error  { return a.Error }
