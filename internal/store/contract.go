package store

import (
	"context"
	"sort"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// ContractReport lists what the analytics store lacks for a set of
// table requirements.
type ContractReport struct {
	Version        int64               `json:"version" yaml:"version"`
	MissingTables  []string            `json:"missing_tables" yaml:"missing_tables"`
	MissingColumns map[string][]string `json:"missing_columns" yaml:"missing_columns"`
}

// OK reports whether every requirement is satisfied.
func (r ContractReport) OK() bool {
	return len(r.MissingTables) == 0 && len(r.MissingColumns) == 0
}

// Satisfies reports whether the requirements of one template are met.
func (r ContractReport) Satisfies(reqs []core.TableRequirement) bool {
	for _, req := range reqs {
		for _, t := range r.MissingTables {
			if t == req.Table {
				return false
			}
		}
		if len(r.MissingColumns[req.Table]) == 0 {
			continue
		}
		missing := make(map[string]bool)
		for _, c := range r.MissingColumns[req.Table] {
			missing[c] = true
		}
		for _, c := range req.Columns {
			if missing[c] {
				return false
			}
		}
	}
	return true
}

// CheckContract compares reqs against the live schema. Column names are
// compared case-insensitively, as SQLite resolves them.
func (s *Store) CheckContract(ctx context.Context, reqs []core.TableRequirement) (ContractReport, error) {
	report := ContractReport{MissingColumns: map[string][]string{}}

	version, err := s.SchemaVersion()
	if err != nil {
		return report, err
	}
	report.Version = version

	tables, err := s.ListTables(ctx)
	if err != nil {
		return report, err
	}
	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[strings.ToLower(t)] = true
	}

	wanted := mergeRequirements(reqs)
	names := make([]string, 0, len(wanted))
	for name := range wanted {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, table := range names {
		if !present[strings.ToLower(table)] {
			report.MissingTables = append(report.MissingTables, table)
			continue
		}
		cols, err := s.TableSchema(ctx, table)
		if err != nil {
			return report, err
		}
		have := make(map[string]bool, len(cols))
		for _, c := range cols {
			have[strings.ToLower(c.Name)] = true
		}
		var missing []string
		for _, c := range wanted[table] {
			if !have[strings.ToLower(c)] {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			report.MissingColumns[table] = missing
		}
	}
	return report, nil
}

// mergeRequirements unions columns per table, sorted and de-duplicated.
func mergeRequirements(reqs []core.TableRequirement) map[string][]string {
	sets := map[string]map[string]bool{}
	for _, r := range reqs {
		if sets[r.Table] == nil {
			sets[r.Table] = map[string]bool{}
		}
		for _, c := range r.Columns {
			sets[r.Table][c] = true
		}
	}
	out := make(map[string][]string, len(sets))
	for table, set := range sets {
		cols := make([]string, 0, len(set))
		for c := range set {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		out[table] = cols
	}
	return out
}
