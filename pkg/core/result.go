package core

// Row is one result row keyed by column name.
type Row map[string]any

// ResultTable is an ordered projection of rows.
// Columns preserves the projection order of the statement that produced it.
type ResultTable struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// Len returns the number of rows.
func (t ResultTable) Len() int {
	return len(t.Rows)
}

// Value returns the value of col in row i, or nil when out of range.
func (t ResultTable) Value(i int, col string) any {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][col]
}

// Records returns the rows as slices ordered by Columns.
func (t ResultTable) Records() [][]any {
	out := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			rec[j] = row[col]
		}
		out[i] = rec
	}
	return out
}
