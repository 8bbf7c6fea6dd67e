package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/catalog"
	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	SkipCRUD bool
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	ConfigFile string          `json:"config_file" yaml:"config_file"`
	Checks     []HealthCheck   `json:"checks" yaml:"checks"`
	Templates  []TemplateCheck `json:"templates" yaml:"templates"`
	Errors     int             `json:"errors" yaml:"errors"`
	Warnings   int             `json:"warnings" yaml:"warnings"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string   `json:"name" yaml:"name"`
	Status  string   `json:"status" yaml:"status"` // "pass", "warn", "error"
	Message string   `json:"message" yaml:"message"`
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// TemplateCheck reports whether the analytics schema can serve a template.
type TemplateCheck struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Ready bool   `json:"ready" yaml:"ready"`
}

const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, the analytics schema and the CRUD target",
		Long: `Run health checks against the current configuration.

The doctor command reports:
- which config file is in use
- the analytics database schema version and any missing tables or columns
- which of the catalog queries the analytics schema can serve
- whether the CRUD target accepts the configured credentials
- whether a Cricbuzz API key is configured`,
		Example: `  cricdash doctor
  cricdash doctor --skip-crud -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), NewCommandContext(cmd), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.SkipCRUD, "skip-crud", false, "Do not connect to the CRUD target")

	return cmd
}

func runDoctor(ctx context.Context, cc *CommandContext, opts *DoctorOptions) error {
	out := &DoctorOutput{ConfigFile: config.GetConfigFileUsed()}

	out.Checks = append(out.Checks, checkCatalog())
	analytics, templates := checkAnalytics(ctx, cc)
	out.Checks = append(out.Checks, analytics)
	out.Templates = templates
	if !opts.SkipCRUD {
		out.Checks = append(out.Checks, checkCRUD(ctx, cc))
	}
	out.Checks = append(out.Checks, checkCricbuzz(cc.Cfg))

	for _, c := range out.Checks {
		switch c.Status {
		case statusError:
			out.Errors++
		case statusWarn:
			out.Warnings++
		}
	}

	r := cc.Renderer
	var err error
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		err = r.Value(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	if err != nil {
		return err
	}
	if out.Errors > 0 {
		return fmt.Errorf("doctor found %d problem(s)", out.Errors)
	}
	return nil
}

func checkCatalog() HealthCheck {
	if err := catalog.Validate(); err != nil {
		return HealthCheck{Name: "Query catalog", Status: statusError, Message: err.Error()}
	}
	return HealthCheck{Name: "Query catalog", Status: statusPass, Message: fmt.Sprintf("%d queries", catalog.Len())}
}

func checkAnalytics(ctx context.Context, cc *CommandContext) (HealthCheck, []TemplateCheck) {
	check := HealthCheck{Name: "Analytics database"}

	st, err := cc.OpenStore(true)
	if err != nil {
		check.Status = statusError
		check.Message = err.Error()
		return check, nil
	}
	defer func() { _ = st.Close() }()

	report, err := st.CheckContract(ctx, catalog.Requirements())
	if err != nil {
		check.Status = statusError
		check.Message = err.Error()
		return check, nil
	}

	templates := make([]TemplateCheck, 0, catalog.Len())
	for _, tmpl := range catalog.List() {
		templates = append(templates, TemplateCheck{ID: tmpl.ID, Label: tmpl.Label, Ready: report.Satisfies(tmpl.Requires)})
	}

	check.Details = contractDetails(report)
	switch {
	case report.OK():
		check.Status = statusPass
		check.Message = fmt.Sprintf("%s (schema version %d)", st.Path(), report.Version)
	case report.Version == 0:
		check.Status = statusError
		check.Message = fmt.Sprintf("%s has not been migrated (run 'cricdash migrate')", st.Path())
	default:
		check.Status = statusWarn
		check.Message = fmt.Sprintf("%s (schema version %d) is missing tables or columns", st.Path(), report.Version)
	}
	return check, templates
}

func contractDetails(report store.ContractReport) []string {
	details := make([]string, 0, len(report.MissingTables)+len(report.MissingColumns))
	for _, t := range report.MissingTables {
		details = append(details, "missing table "+t)
	}
	tables := make([]string, 0, len(report.MissingColumns))
	for t := range report.MissingColumns {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		details = append(details, fmt.Sprintf("%s is missing columns: %s", t, strings.Join(report.MissingColumns[t], ", ")))
	}
	return details
}

func checkCRUD(ctx context.Context, cc *CommandContext) HealthCheck {
	check := HealthCheck{Name: "CRUD target"}
	svc, err := cc.CRUD()
	if err != nil {
		check.Status = statusError
		check.Message = err.Error()
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, cc.Cfg.QueryTimeout)
	defer cancel()

	dbs, err := svc.ListDatabases(ctx)
	if err != nil {
		check.Status = statusWarn
		check.Message = err.Error()
		return check
	}
	check.Status = statusPass
	check.Message = fmt.Sprintf("%s (%d databases)", cc.Cfg.CRUD.Credentials().Target(), len(dbs))
	return check
}

func checkCricbuzz(cfg *config.Config) HealthCheck {
	if cfg.Cricbuzz.APIKey == "" {
		return HealthCheck{Name: "Cricbuzz API key", Status: statusWarn, Message: "not configured; live and players commands are unavailable"}
	}
	return HealthCheck{Name: "Cricbuzz API key", Status: statusPass, Message: "configured for " + cfg.Cricbuzz.Host}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("cricdash health report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	if out.ConfigFile != "" {
		r.Println(styles.Muted.Render("   config: " + out.ConfigFile))
	}
	r.Println("")

	for _, check := range out.Checks {
		icon := styles.StatusSuccess.String()
		switch check.Status {
		case statusWarn:
			icon = styles.Warning.Render("!")
		case statusError:
			icon = styles.StatusFailed.String()
		}
		r.Printf("   %s %s: %s\n", icon, styles.Bold.Render(check.Name), check.Message)
		for _, detail := range check.Details {
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}

	if len(out.Templates) > 0 {
		r.Println("")
		r.Println(styles.Header2.Render("Catalog queries"))
		for _, tmpl := range out.Templates {
			icon := styles.StatusSuccess.String()
			if !tmpl.Ready {
				icon = styles.StatusFailed.String()
			}
			r.Printf("   %s %s\n", icon, tmpl.Label)
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("   %d errors, %d warnings\n", out.Errors, out.Warnings)
	r.Println("")
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# cricdash health report")
	r.Println("")
	if out.ConfigFile != "" {
		r.Printf("Config file: `%s`\n\n", out.ConfigFile)
	}

	r.Println("## Checks")
	r.Println("")
	for _, check := range out.Checks {
		r.Printf("- **[%s]** %s: %s\n", strings.ToUpper(check.Status), check.Name, check.Message)
		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	if len(out.Templates) > 0 {
		r.Println("## Catalog queries")
		r.Println("")
		for _, tmpl := range out.Templates {
			mark := "x"
			if !tmpl.Ready {
				mark = " "
			}
			r.Printf("- [%s] %s\n", mark, tmpl.Label)
		}
		r.Println("")
	}

	r.Printf("**%d errors, %d warnings**\n", out.Errors, out.Warnings)
}
