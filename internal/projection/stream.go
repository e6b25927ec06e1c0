package projection

import "github.com/roach88/grove/internal/event"

// Stream item kinds.
const (
	StreamItemQuery    = "query"
	StreamItemResponse = "response"
)

// StreamItem is one entry in the conversational timeline.
type StreamItem struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	QueryID       string `json:"queryId,omitempty"` // for responses: the query answered
	Content       string `json:"content,omitempty"`
	HubID         string `json:"hubId,omitempty"`
	HasNavigation bool   `json:"hasNavigation,omitempty"`
	SpanCount     int    `json:"spanCount,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// StreamState is the reconstructed conversation. CurrentItem is nil while a
// query is outstanding and points at the latest response otherwise.
type StreamState struct {
	Items       []StreamItem `json:"items"`
	CurrentItem *StreamItem  `json:"currentItem"`
}

// InitialStreamState is the stream of an empty event slice.
var InitialStreamState = StreamState{Items: []StreamItem{}}

// Stream walks events in order, emitting a query item per QUERY_SUBMITTED
// and a response item per RESPONSE_COMPLETED.
func Stream(events []event.Event) StreamState {
	state := StreamState{Items: []StreamItem{}}
	pending := false

	for _, e := range events {
		switch ev := e.(type) {
		case *event.QuerySubmitted:
			state.Items = append(state.Items, StreamItem{
				Type:      StreamItemQuery,
				ID:        ev.QueryID,
				Content:   ev.Content,
				Timestamp: ev.Timestamp,
			})
			pending = true
			state.CurrentItem = nil
		case *event.ResponseCompleted:
			item := StreamItem{
				Type:          StreamItemResponse,
				ID:            ev.ResponseID,
				QueryID:       ev.QueryID,
				HubID:         ev.HubID,
				HasNavigation: ev.HasNavigation,
				SpanCount:     ev.SpanCount,
				Timestamp:     ev.Timestamp,
			}
			state.Items = append(state.Items, item)
			current := item
			state.CurrentItem = &current
			pending = false
		}
	}

	if pending {
		state.CurrentItem = nil
	}
	return state
}

// LastStreamItems returns the last n items of the stream.
func LastStreamItems(events []event.Event, n int) []StreamItem {
	items := Stream(events).Items
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// QueryResponsePairs returns [query, response] tuples for each answered
// query, in query order. Unanswered queries contribute no pair.
func QueryResponsePairs(events []event.Event) [][2]StreamItem {
	queries := map[string]StreamItem{}
	var order []string
	responses := map[string]StreamItem{}

	for _, item := range Stream(events).Items {
		switch item.Type {
		case StreamItemQuery:
			if _, ok := queries[item.ID]; !ok {
				queries[item.ID] = item
				order = append(order, item.ID)
			}
		case StreamItemResponse:
			if _, ok := responses[item.QueryID]; !ok {
				responses[item.QueryID] = item
			}
		}
	}

	var pairs [][2]StreamItem
	for _, queryID := range order {
		response, ok := responses[queryID]
		if !ok {
			continue
		}
		pairs = append(pairs, [2]StreamItem{queries[queryID], response})
	}
	return pairs
}

// HasActiveQuery reports whether the most recent query is still unanswered.
func HasActiveQuery(events []event.Event) bool {
	lastQuery := ""
	answered := map[string]bool{}

	for _, e := range events {
		switch ev := e.(type) {
		case *event.QuerySubmitted:
			lastQuery = ev.QueryID
		case *event.ResponseCompleted:
			answered[ev.QueryID] = true
		}
	}
	return lastQuery != "" && !answered[lastQuery]
}
