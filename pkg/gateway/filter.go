package gateway

import (
	"encoding/json"
	"log/slog"

	"github.com/lukefarrell/snapfeed/pkg/util"
)

// Filter is one element of a document list query, serialized to the remote
// service's JSON query syntax.
type Filter struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func Equal(attribute string, values ...any) Filter {
	return Filter{Method: "equal", Attribute: attribute, Values: values}
}

// Search matches documents whose attribute contains the given term
// (full-text).
func Search(attribute, term string) Filter {
	return Filter{Method: "search", Attribute: attribute, Values: []any{term}}
}

func OrderDesc(attribute string) Filter {
	return Filter{Method: "orderDesc", Attribute: attribute}
}

func Limit(n int) Filter {
	return Filter{Method: "limit", Values: []any{n}}
}

// CursorAfter requests documents strictly after the document with the given
// ID, in the query's order.
func CursorAfter(id string) Filter {
	return Filter{Method: "cursorAfter", Values: []any{id}}
}

func (f Filter) encode() string {
	data, err := json.Marshal(f)
	if err != nil {
		// Filters are built from literals; this should not happen.
		slog.Error(util.WrapErr("failed to marshal filter", err).Error())
		return "{}"
	}
	return string(data)
}
