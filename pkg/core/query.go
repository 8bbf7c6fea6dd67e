package core

// WindowPolicy describes how a template bounds its trailing window.
type WindowPolicy int

// Window policies used by the analytics catalog.
const (
	// WindowNone means the template reads all rows.
	WindowNone WindowPolicy = iota
	// WindowExecutionTime means the window is relative to date('now') at run time.
	WindowExecutionTime
	// WindowFixedDate means the window starts at a literal calendar date.
	WindowFixedDate
	// WindowLatestRecord means the window is the most recent N rows per player.
	WindowLatestRecord
)

func (w WindowPolicy) String() string {
	switch w {
	case WindowExecutionTime:
		return "execution-time"
	case WindowFixedDate:
		return "fixed-date"
	case WindowLatestRecord:
		return "latest-record"
	default:
		return "none"
	}
}

// MarshalText renders the policy for JSON and YAML output.
func (w WindowPolicy) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// TableRequirement names a table and the columns a template reads from it.
type TableRequirement struct {
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`
}

// QueryTemplate is a fixed, parameter-free analytics query.
type QueryTemplate struct {
	ID       string             `json:"id" yaml:"id"`
	Label    string             `json:"label" yaml:"label"`
	SQL      string             `json:"sql" yaml:"sql"`
	Window   WindowPolicy       `json:"window" yaml:"window"`
	Requires []TableRequirement `json:"requires" yaml:"requires"`
}
