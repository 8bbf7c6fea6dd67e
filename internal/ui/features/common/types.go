// Package common provides shared types, components and helpers for UI features.
package common

import (
	"log/slog"
	"time"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/internal/crud"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/internal/ui/notifier"
)

// Deps are the collaborators shared by every feature. CRUD and API are
// nil when the CRUD target or the Cricbuzz key is not configured.
type Deps struct {
	Store    *store.Store
	CRUD     *crud.Service
	API      *cricbuzz.Client
	Sessions sessions.Store
	Notifier *notifier.Notifier
	Logger   *slog.Logger

	QueryTimeout    time.Duration
	DefaultDatabase string
	DefaultLimit    int
}

// TableView is a result table flattened to display strings.
type TableView struct {
	Columns   []string
	Rows      [][]string
	RowCount  int
	Truncated bool
	QueryMS   int64
	SQL       string
}

// MaxRows caps the rows rendered into a page.
const MaxRows = 1000

// Tab is one section of the dashboard navigation.
type Tab struct {
	ID    string
	Label string
}

// Tabs lists the dashboard sections in display order.
var Tabs = []Tab{
	{ID: "analytics", Label: "Analytics"},
	{ID: "playground", Label: "SQL Playground"},
	{ID: "crud", Label: "CRUD"},
	{ID: "live", Label: "Live"},
}
