package analytics

import "github.com/leapstack-labs/cricdash/internal/catalog"

const (
	resultsID           = "analytics-results"
	playgroundResultsID = "playground-results"
	tablesID            = "playground-tables"
	schemaID            = "playground-schema"
)

func firstQueryID() string {
	if tmpl, ok := catalog.At(0); ok {
		return tmpl.ID
	}
	return ""
}

func defaultText(def *string) string {
	if def == nil {
		return "NULL"
	}
	return *def
}
