package common

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// SessionName is the cookie name of the UI session.
const SessionName = "cricdash"

// FormatValue renders a scanned value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

// NewTableView flattens rt, keeping at most MaxRows rows.
func NewTableView(rt core.ResultTable, elapsed time.Duration) TableView {
	view := TableView{Columns: rt.Columns, QueryMS: elapsed.Milliseconds()}
	for i, rec := range rt.Records() {
		if i >= MaxRows {
			view.Truncated = true
			break
		}
		row := make([]string, len(rec))
		for j, v := range rec {
			row[j] = FormatValue(v)
		}
		view.Rows = append(view.Rows, row)
	}
	view.RowCount = len(view.Rows)
	return view
}

// WithTimeout bounds a request context by the configured query timeout.
func (d Deps) WithTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if d.QueryTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), d.QueryTimeout)
}
