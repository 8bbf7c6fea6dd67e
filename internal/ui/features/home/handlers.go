package home

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/cricdash/internal/ui/features/analytics"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	"github.com/leapstack-labs/cricdash/internal/ui/features/crud"
	"github.com/leapstack-labs/cricdash/internal/ui/features/live"
	"github.com/leapstack-labs/cricdash/internal/ui/notifier"
	"github.com/starfederation/datastar-go/datastar"
)

// Title is the dashboard page title.
const Title = "Cricket Analytics Dashboard"

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// HomePage renders the dashboard with every tab's panel.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := common.Layout(Title, Dashboard(h.deps.DefaultLimit)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// tabPanel returns the content of the tab with id.
func tabPanel(id string, defaultLimit int) templ.Component {
	switch id {
	case "analytics":
		return analytics.QueryPanel()
	case "playground":
		return analytics.PlaygroundPanel()
	case "crud":
		return crud.Panel(defaultLimit)
	case "live":
		return live.Panel()
	}
	return templ.NopComponent
}

// UpdatesSSE is the long-lived stream that tells the page when data
// changed. Nothing is sent until the first change.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if h.deps.Notifier == nil {
		<-r.Context().Done()
		return
	}

	updates := h.deps.Notifier.Subscribe()
	defer h.deps.Notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := h.sendUpdate(ctx, sse, ev); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendUpdate(ctx context.Context, sse *datastar.ServerSentEventGenerator, ev notifier.Event) error {
	if err := sse.PatchElementTempl(UpdateNotice(ev)); err != nil {
		return err
	}
	if ev.Source != notifier.SourceAnalytics || h.deps.Store == nil {
		return nil
	}
	tables, err := h.deps.Store.ListTables(ctx)
	if err != nil {
		return err
	}
	return sse.PatchElementTempl(analytics.TableList(tables))
}

// UpdateNotice renders the change banner.
func UpdateNotice(ev notifier.Event) templ.Component {
	msg := "Data changed"
	switch ev.Source {
	case notifier.SourceAnalytics:
		msg = "Analytics database changed. Re-run queries to see fresh results."
	case notifier.SourceCRUD:
		msg = "CRUD target changed: " + ev.Detail
	}
	if !ev.At.IsZero() {
		msg = ev.At.Format("15:04:05") + " " + msg
	}
	return common.Notice("updates", msg)
}
