package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"caja/internal/aggregate"
	"caja/internal/core"
	"caja/internal/filter"
	"caja/internal/forms"
	"caja/internal/log"
	"caja/internal/report"
)

// transactionForm is the wire shape of the create/edit drawer submission.
type transactionForm struct {
	Kind         string            `json:"tipo"`
	Date         string            `json:"fecha"`
	Amount       string            `json:"valor"`
	Account      string            `json:"cuenta"`
	Concept      string            `json:"concepto"`
	FirstName    string            `json:"nombre"`
	LastName     string            `json:"apellido"`
	Document     string            `json:"documento"`
	Reference    string            `json:"referencia"`
	Seller       string            `json:"vendedor"`
	HasCustomer  bool              `json:"con_cliente"`
	Items        []report.LineItem `json:"items"`
	WantsReceipt bool              `json:"generar_recibo"`
}

func (tf transactionForm) toForm(id string) forms.Form {
	f := forms.Form{
		ID:           id,
		Kind:         core.Kind(tf.Kind),
		Amount:       strings.TrimSpace(tf.Amount),
		Account:      core.Account(tf.Account),
		Concept:      strings.TrimSpace(tf.Concept),
		FirstName:    strings.TrimSpace(tf.FirstName),
		LastName:     strings.TrimSpace(tf.LastName),
		Document:     strings.TrimSpace(tf.Document),
		Reference:    strings.TrimSpace(tf.Reference),
		Seller:       strings.TrimSpace(tf.Seller),
		HasCustomer:  tf.HasCustomer,
		Items:        tf.Items,
		WantsReceipt: tf.WantsReceipt,
	}
	for _, layout := range []string{time.RFC3339, dayLayout} {
		if t, err := time.Parse(layout, tf.Date); err == nil {
			f.Date = t
			break
		}
	}
	return f
}

// GET /api/transacciones
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)

	records, err := s.client.List(r.Context(), session)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Backend list failed",
			log.FieldOperation, log.OpList,
			log.FieldTenant, session.Tenant,
			log.FieldError, err.Error())
		writeError(w, upstreamStatus(err), noticeFor(err))
		return
	}

	state := filterFromQuery(r.URL.Query())
	visible := filter.Apply(records, state)

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  visible,
		"total": len(visible),
	})
}

// POST /api/transacciones and PUT /api/transacciones/{id}
func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	id := r.PathValue("id")

	var tf transactionForm
	if err := json.NewDecoder(r.Body).Decode(&tf); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	form := tf.toForm(id)

	// One drawer controller per request: same validation and submit
	// semantics the interactive drawer has.
	ctrl := forms.NewController(s.client, s.receipts, s.log, nil)
	ctrl.OpenBlank(form.Kind, form.Seller, s.defaultAccount)
	if form.Account == "" {
		form.Account = s.defaultAccount
	}
	if form.Date.IsZero() {
		form.Date = time.Now()
	}
	ctrl.SetForm(form)

	saved, err := ctrl.Submit(r.Context(), session)
	if fieldErrs := ctrl.FieldErrors(); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errores": fieldErrs})
		return
	}
	if err != nil {
		status := upstreamStatus(err)
		payload := map[string]any{"error": noticeFor(err)}
		if n := ctrl.Notice(); n != nil {
			payload["notificacion"] = n
		}
		writeJSON(w, status, payload)
		return
	}

	s.invalidateSummaries(session.Tenant)

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"data": saved})
}

// DELETE /api/transacciones/{id}
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	id := r.PathValue("id")

	if err := s.client.Delete(r.Context(), session, id); err != nil {
		s.log.ErrorContext(r.Context(), "Backend delete failed",
			log.FieldOperation, log.OpDelete,
			log.FieldTransactionID, id,
			log.FieldError, err.Error())
		writeError(w, upstreamStatus(err), noticeFor(err))
		return
	}

	s.invalidateSummaries(session.Tenant)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/resumen
//
// ambito=mes restricts the facets to month bounds plus account; the
// default scope honors every facet in the query.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	q := r.URL.Query()

	scope := aggregate.Scope{MonthOnly: q.Get("ambito") == "mes"}
	if scope.MonthOnly {
		now := time.Now()
		year, month := now.Year(), now.Month()
		if v := q.Get("anio"); v != "" {
			if y, err := strconv.Atoi(v); err == nil {
				year = y
			}
		}
		if v := q.Get("mes"); v != "" {
			if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
				month = time.Month(m)
			}
		}
		scope.State = filter.Month(year, month, core.Account(q.Get("cuenta")))
	} else {
		scope.State = filterFromQuery(q)
	}

	key := summaryKey(session.Tenant, scope)
	if cached, found := s.summaryCache.Get(key); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.client.List(r.Context(), session)
	if err != nil {
		writeError(w, upstreamStatus(err), noticeFor(err))
		return
	}

	result := aggregate.Compute(records, scope)
	s.summaryCache.Set(key, result)
	writeJSON(w, http.StatusOK, result)
}

// reportRequest is the body of POST /api/reportes.
type reportRequest struct {
	Kind    string `json:"tipo"`    // ventas | gastos
	Format  string `json:"formato"` // pdf (default) | xlsx
	Year    int    `json:"anio"`
	Month   int    `json:"mes"`
	Account string `json:"cuenta"`
}

// POST /api/reportes
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	kind := report.Kind(req.Kind)
	if kind != report.KindVentas && kind != report.KindGastos {
		writeError(w, http.StatusBadRequest, "Tipo de reporte no válido")
		return
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		writeError(w, http.StatusBadRequest, "Periodo no válido")
		return
	}
	format := req.Format
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "Formato no válido")
		return
	}

	records, err := s.client.List(r.Context(), session)
	if err != nil {
		writeError(w, upstreamStatus(err), noticeFor(err))
		return
	}

	period := report.Period{Year: req.Year, Month: time.Month(req.Month)}
	state := filter.Month(req.Year, period.Month, core.Account(req.Account))
	visible := filter.Apply(records, state)

	// The sales report carries income rows only, the expense report
	// expense rows only.
	wantKind := core.KindIngreso
	if kind == report.KindGastos {
		wantKind = core.KindEgreso
	}
	rows := make([]core.Transaction, 0, len(visible))
	for _, t := range visible {
		if t.Kind == wantKind {
			rows = append(rows, t)
		}
	}

	var generated report.Generated
	if format == "xlsx" {
		generated, err = s.renderer.ExportXLSX(rows, kind, period)
	} else {
		generated, err = s.renderer.Render(rows, kind, period)
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Report rendering failed",
			log.FieldOperation, log.OpRender,
			log.FieldReportKind, string(kind),
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "No se pudo generar el reporte")
		return
	}

	if err := s.registry.Record(r.Context(), session.Tenant, generated); err != nil {
		s.log.ErrorContext(r.Context(), "Report registry write failed",
			log.FieldFilename, generated.Filename,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "No se pudo registrar el reporte")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"id":       generated.ID,
			"tipo":     string(generated.Kind),
			"archivo":  generated.Filename,
			"filas":    generated.Rows,
			"total":    generated.Total,
			"descarga": fmt.Sprintf("/api/reportes/%s/archivo", generated.ID),
		},
	})
}

// GET /api/reportes
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)

	limit := 50
	if v := r.URL.Query().Get("limite"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.registry.List(r.Context(), session.Tenant, limit)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Report registry list failed",
			log.FieldTenant, session.Tenant,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "No se pudieron listar los reportes")
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"id":        e.ID,
			"tipo":      string(e.Kind),
			"archivo":   e.Filename,
			"filas":     e.Rows,
			"total":     e.Total,
			"creado_en": e.CreatedAt,
			"descarga":  fmt.Sprintf("/api/reportes/%s/archivo", e.ID),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out, "total": len(out)})
}

// GET /api/reportes/{id}/archivo
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(r)
	id := r.PathValue("id")

	entry, err := s.registry.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}
	// Artifacts are tenant-scoped; don't serve another tenant's files
	if entry.Tenant != session.Tenant {
		writeError(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}

	contentType := "application/pdf"
	if strings.HasSuffix(entry.Filename, ".xlsx") {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.Filename))
	http.ServeFile(w, r, entry.Path)
}

func (s *Server) invalidateSummaries(tenant string) {
	s.summaryCache.DeletePrefix(tenant + "|")
}

func summaryKey(tenant string, scope aggregate.Scope) string {
	st := scope.State
	from, to := "", ""
	if !st.From.IsZero() {
		from = st.From.Format(dayLayout)
	}
	if !st.To.IsZero() {
		to = st.To.Format(dayLayout)
	}
	return fmt.Sprintf("%s|%v|%s|%s|%s|%s|%s|%d",
		tenant, scope.MonthOnly, from, to, st.Account, st.Concept, st.FreeText, st.DayOfMonth)
}

func noticeFor(err error) string {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Message
	}
	return "No se pudo contactar el servidor. Intenta de nuevo."
}
