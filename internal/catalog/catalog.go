// Package catalog holds the fixed analytics query templates and runs them
// against the analytics store.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// List returns every template in catalog order.
func List() []core.QueryTemplate {
	out := make([]core.QueryTemplate, len(templates))
	copy(out, templates)
	return out
}

// Len returns the number of templates.
func Len() int {
	return len(templates)
}

// At returns the template at zero-based position i.
func At(i int) (core.QueryTemplate, bool) {
	if i < 0 || i >= len(templates) {
		return core.QueryTemplate{}, false
	}
	return templates[i], true
}

// ByID returns the template with the given ID, e.g. "q07".
func ByID(id string) (core.QueryTemplate, bool) {
	for _, t := range templates {
		if strings.EqualFold(t.ID, id) {
			return t, true
		}
	}
	return core.QueryTemplate{}, false
}

// Lookup resolves a user reference such as "3", "q03" or "Q3".
func Lookup(ref string) (core.QueryTemplate, error) {
	ref = strings.TrimSpace(ref)
	num := strings.TrimPrefix(strings.TrimPrefix(ref, "q"), "Q")
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > len(templates) {
		return core.QueryTemplate{}, &core.ValidationError{
			Field:  "query",
			Reason: fmt.Sprintf("unknown query %q (expected 1-%d, q01-q%02d)", ref, len(templates), len(templates)),
		}
	}
	return templates[n-1], nil
}

// Number returns the one-based position of a template, or 0 if it is not
// in the catalog.
func Number(id string) int {
	for i, t := range templates {
		if strings.EqualFold(t.ID, id) {
			return i + 1
		}
	}
	return 0
}

// Validate checks that every template is read-only and uniquely identified.
func Validate() error {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if seen[t.ID] {
			return fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true

		switch store.LeadingKeyword(t.SQL) {
		case "select", "with":
		default:
			return fmt.Errorf("template %s is not a read-only statement", t.ID)
		}
		if len(t.Requires) == 0 {
			return fmt.Errorf("template %s declares no required tables", t.ID)
		}
	}
	return nil
}

// Requirements returns the tables and columns read by every template.
func Requirements() []core.TableRequirement {
	var out []core.TableRequirement
	for _, t := range templates {
		out = append(out, t.Requires...)
	}
	return out
}
