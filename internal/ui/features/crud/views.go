package crud

import (
	"encoding/json"
	"strconv"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

const (
	databasesID = "crud-databases"
	tablesID    = "crud-tables"
	formID      = "crud-form"
	resultsID   = "crud-results"
	mutationID  = "crud-mutation"
)

func panelSignals(defaultLimit int) string {
	return "{database: '', table: '', limit: " + strconv.Itoa(defaultLimit) +
		", crudSql: '', values: {}, set: '', where: ''}"
}

func pickerSignals(selected string) string {
	sel, _ := json.Marshal(map[string]string{"database": selected})
	return string(sel)
}

// formSignals resets values to one blank entry per column.
func formSignals(cols []core.Column) string {
	values := make(map[string]string, len(cols))
	for _, c := range cols {
		values[c.Name] = ""
	}
	init, _ := json.Marshal(map[string]any{"values": values})
	return string(init)
}

func columnHint(c core.Column) string {
	hint := c.Type
	if !c.Nullable {
		hint += " not null"
	}
	if c.Key != core.KeyNone {
		hint += " " + c.Key.String()
	}
	if c.Default != nil {
		hint += " default " + *c.Default
	}
	return hint
}

func affectedText(n int64) string {
	rows := "row"
	if n != 1 {
		rows = "rows"
	}
	return strconv.FormatInt(n, 10) + " " + rows + " affected"
}
