package continuous

import (
	"log/slog"

	"github.com/usestring/pyroscope-mcp/internal/action"
	"github.com/usestring/pyroscope-mcp/pkg/attime"
)

// Reduce returns the state after applying a. Actions that do not belong to
// this slice return s unchanged.
//
// Time bounds and the node limit are parsed here; a value that does not
// parse falls back to the field's default.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case SetFrom:
		s.From = attime.ParseOr(a.Value, defaultFrom)
	case SetUntil:
		s.Until = attime.ParseOr(a.Value, defaultUntil)
	case SetLeftFrom:
		s.LeftFrom = attime.ParseOr(a.Value, defaultLeftFrom)
	case SetLeftUntil:
		s.LeftUntil = attime.ParseOr(a.Value, defaultLeftUntil)
	case SetRightFrom:
		s.RightFrom = attime.ParseOr(a.Value, defaultRightFrom)
	case SetRightUntil:
		s.RightUntil = attime.ParseOr(a.Value, defaultRightUntil)
	case SetQuery:
		s.Query = a.Value
	case SetMaxNodes:
		s.MaxNodes = ParseMaxNodes(a.Value)
	case SetDateRange:
		s.From = attime.ParseOr(a.From, defaultFrom)
		s.Until = attime.ParseOr(a.Until, defaultUntil)
	case Refresh:
		s.RefreshToken = a.Token

	case SingleViewPending:
		s.fence.singleView = a.RequestID
		s.SingleView = singleViewPending(s.SingleView)
	case SingleViewFulfilled:
		if stale(a.Type(), a.RequestID, s.fence.singleView) {
			return s
		}
		s.SingleView = SingleViewLoaded{
			Timeline: a.Output.Timeline,
			Profile:  a.Output.Profile,
		}
	case SingleViewRejected:
		if stale(a.Type(), a.RequestID, s.fence.singleView) {
			return s
		}
		s.SingleView = singleViewRejected(s.SingleView)

	case TagsPending:
		s.fence.tags = a.RequestID
		s.Tags = TagsLoading{Set: labelsOf(s.Tags)}
	case TagsFulfilled:
		if stale(a.Type(), a.RequestID, s.fence.tags) {
			return s
		}
		// The label list is authoritative: values learned for the previous
		// list are dropped.
		s.Tags = TagsLoaded{Set: NewLabelSet(a.Labels...)}
	case TagsRejected:
		if stale(a.Type(), a.RequestID, s.fence.tags) {
			return s
		}
		s.Tags = TagsFailed{Set: labelsOf(s.Tags)}

	case TagValuesPending:
		s.fence = s.fence.withTagValues(a.Label, a.RequestID)
	case TagValuesFulfilled:
		if stale(a.Type(), a.RequestID, s.fence.tagValues[a.Label]) {
			return s
		}
		s.Tags = withLabels(s.Tags, labelsOf(s.Tags).With(a.Label, a.Values))
	case TagValuesRejected:
		// Nothing to undo; the notification is the only effect.
	}
	return s
}

// singleViewPending starts a fetch. Loaded data stays displayable.
func singleViewPending(v SingleView) SingleView {
	return MatchSingleView(v,
		func(SingleViewPristine) SingleView { return SingleViewLoading{} },
		func(SingleViewLoading) SingleView { return SingleViewLoading{} },
		func(l SingleViewLoaded) SingleView {
			return SingleViewReloading{Timeline: l.Timeline, Profile: l.Profile}
		},
		func(SingleViewReloading) SingleView { return SingleViewLoading{} },
	)
}

// singleViewRejected fails a fetch. A failed reload reverts to the data it
// was reloading; anything else has no data to keep.
func singleViewRejected(v SingleView) SingleView {
	return MatchSingleView(v,
		func(SingleViewPristine) SingleView { return SingleViewPristine{} },
		func(SingleViewLoading) SingleView { return SingleViewPristine{} },
		func(SingleViewLoaded) SingleView { return SingleViewPristine{} },
		func(r SingleViewReloading) SingleView {
			return SingleViewLoaded{Timeline: r.Timeline, Profile: r.Profile}
		},
	)
}

func labelsOf(t Tags) LabelSet {
	if t == nil {
		return NewLabelSet()
	}
	return t.Labels()
}

// stale reports whether a result for request id arrived after a newer
// request for the same resource was issued.
func stale(actionType string, id, latest uint64) bool {
	if id == latest {
		return false
	}
	slog.Debug("discarding stale fetch result",
		slog.String("action", actionType),
		slog.Uint64("request_id", id),
		slog.Uint64("latest_request_id", latest),
	)
	return true
}
