package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"budgetboard/internal/app"
	"budgetboard/internal/cache"
	"budgetboard/internal/controller"
	"budgetboard/internal/export"
	applog "budgetboard/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if err := s.app.Ready(ctx); err != nil {
		applog.FromContext(ctx).ErrorType(ctx, "Store readiness check failed", applog.ErrorTypeDatabase, err)
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["cache"] = map[string]interface{}{
		"fragment_entries": s.fragments.Size(),
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Rejected(),
	}
	checks["security"] = map[string]interface{}{
		"suspicious_requests": s.security.suspiciousRequests.Load(),
		"rate_limit_hits":     s.security.rateLimitHits.Load(),
	}
	checks["revision"] = s.app.Ledger.Revision()

	NewHTMXResponse().
		Status(httpStatus).
		BodyJSON(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.render("index.html", s.pageData())
	if err != nil {
		applog.FromContext(r.Context()).ErrorType(r.Context(), "Index render failed", applog.ErrorTypeInternal, err)
		InternalServerError("Could not render the dashboard").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleDashboard renders the summary, progress and table partial. Fragments are cached per
// ledger revision and theme.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := s.app.Dashboard()
	key := cache.FragmentKey("dashboard", d.Revision, string(s.app.Theme.Theme()))

	if body, ok := s.fragments.Get(key); ok {
		applog.FromContext(ctx).DebugContext(ctx, "Dashboard fragment cache hit", applog.FieldKey, key)
		NewHTMXResponse().BodyHTML(body).Write(w)
		return
	}

	body, err := s.render("dashboard", d)
	if err != nil {
		applog.FromContext(ctx).ErrorType(ctx, "Dashboard render failed", applog.ErrorTypeInternal, err)
		InternalServerError("Could not render the dashboard").Write(w)
		return
	}
	s.fragments.Set(key, body)
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().
		Header("Cache-Control", "no-store").
		BodyJSON(s.app.Dashboard().Chart).
		Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Malformed expense request",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeValidation)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	mark := s.app.Status.Shown()
	res := s.app.Form.Submit(ctx, controller.FormInput{
		Description: parser.Get("description"),
		Amount:      parser.Get("amount"),
		Category:    parser.Get("category"),
		Date:        parser.Get("date"),
	})

	body, err := s.render("expense-form", s.formView(res.Values, res.Errors))
	if err != nil {
		applog.FromContext(ctx).ErrorType(ctx, "Expense form render failed", applog.ErrorTypeInternal, err)
		InternalServerError("Could not render the form").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(body)
	if !res.OK {
		resp.Status(http.StatusUnprocessableEntity).Write(w)
		return
	}
	resp.TriggerLedgerChanged(s.app.Ledger.Revision()).
		TriggerFormReset().
		TriggerNotification(NotificationSuccess, controller.MsgExpenseAdded, s.noticeMs())
	s.withStatus(resp, mark).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	mark := s.app.Status.Shown()
	s.app.Ledger.Remove(r.Context(), r.PathValue("id"))
	resp := NewHTMXResponse().TriggerLedgerChanged(s.app.Ledger.Revision())
	s.withStatus(resp, mark).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	mark := s.app.Status.Shown()
	res := s.app.Budget.Set(ctx, parser.Get("budget"))
	panel := s.budgetView()
	if !res.OK {
		// Keep what the user typed so it can be corrected.
		panel.Value = parser.Get("budget")
	}
	body, err := s.render("budget-panel", panel)
	if err != nil {
		applog.FromContext(ctx).ErrorType(ctx, "Budget panel render failed", applog.ErrorTypeInternal, err)
		InternalServerError("Could not render the budget panel").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(body)
	if !res.OK {
		resp.Status(http.StatusUnprocessableEntity).
			TriggerNotification(NotificationError, res.Message, s.noticeMs()).
			Write(w)
		return
	}
	resp.TriggerLedgerChanged(s.app.Ledger.Revision()).
		TriggerNotification(NotificationSuccess, res.Message, s.noticeMs())
	s.withStatus(resp, mark).Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.app.Theme.Toggle(ctx)

	body, err := s.render("theme-toggle", s.themeView())
	if err != nil {
		applog.FromContext(ctx).ErrorType(ctx, "Theme toggle render failed", applog.ErrorTypeInternal, err)
		InternalServerError("Could not render the theme toggle").Write(w)
		return
	}
	NewHTMXResponse().
		BodyHTML(body).
		TriggerThemeChanged(s.app.Theme.Dark()).
		TriggerChartRedraw().
		Write(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var buf bytes.Buffer
	exporter, err := s.app.Exporter(ctx, app.FormatXLSX, &buf)
	if err == nil {
		err = exporter.Export(ctx, s.app.Dashboard())
	}
	if err != nil {
		applog.FromContext(ctx).ErrorType(ctx, "Workbook export failed", applog.ErrorTypeInternal, err,
			applog.FieldOperation, applog.OpExport)
		InternalServerError("Could not export expenses").Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", export.ContentTypeXLSX).
		Header("Content-Disposition", `attachment; filename="expenses.xlsx"`).
		Body(buf.Bytes()).
		Write(w)
}

// withStatus forwards a persistence warning raised since mark to the page status banner.
func (s *Server) withStatus(resp *HTMXResponseBuilder, mark int) *HTMXResponseBuilder {
	if s.app.Status.Shown() == mark {
		return resp
	}
	if n := s.app.Status.Current(); n.Visible {
		resp.TriggerStatusWarning(n.Text, s.noticeMs())
	}
	return resp
}
