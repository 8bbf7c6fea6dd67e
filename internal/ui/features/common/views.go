package common

import (
	"strconv"
	"strings"
)

// DatastarScript is the client bundle that drives data-* attributes.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

func rowCount(v TableView) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.RowCount))
	if v.RowCount == 1 {
		b.WriteString(" row")
	} else {
		b.WriteString(" rows")
	}
	if v.Truncated {
		b.WriteString(" (truncated)")
	}
	if v.QueryMS > 0 {
		b.WriteString(" in " + strconv.FormatInt(v.QueryMS, 10) + " ms")
	}
	return b.String()
}
