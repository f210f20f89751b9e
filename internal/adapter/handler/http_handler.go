package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/core/service"
	"github.com/rl1809/aspas/internal/logger"
)

const SessionHeader = "X-Session-Token"

type pinger interface {
	Ping(ctx context.Context) error
}

// Services are the core operations the transports drive.
type Services struct {
	Auth      *service.AuthService
	Sessions  *service.SessionRegistry
	Inventory *service.InventoryService
	Sales     *service.SalesService
	Audit     *service.AuditService
	Reports   *service.ReportService
	Store     pinger
}

type HTTPHandler struct {
	svc Services
}

func NewHTTPHandler(svc Services) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, h.logRequests)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Post("/logout", h.Logout)

			r.Get("/parts", h.ListParts)
			r.Post("/parts", h.AddPart)
			r.Get("/parts/sellable", h.ListSellableParts)
			r.Delete("/parts/{id}", h.DeletePart)

			r.Get("/vendors", h.ListVendors)
			r.Post("/vendors", h.AddVendor)

			r.Post("/sales", h.RecordSale)
			r.Post("/sales/customer", h.RecordCustomerSale)
			r.Get("/sales", h.ListSales)
			r.Get("/sales/lines", h.ListSaleLines)

			r.Get("/audit", h.ViewAuditLog)
			r.Get("/audit/export", h.ExportAuditLog)
			r.Post("/audit", h.RecordAudit)

			r.Get("/reports/sales", h.SalesReport)
			r.Get("/reports/monthly", h.MonthlySales)
			r.Get("/reports/monthly/export", h.ExportMonthlySales)
			r.Get("/reports/weekly", h.WeeklyDemand)
			r.Get("/reports/weekly/export", h.ExportWeeklyDemand)
		})
	})
	return r
}

type sessionKey struct{}

type sessionToken struct {
	token   string
	session domain.Session
}

func (h *HTTPHandler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(SessionHeader)
		sess, err := h.svc.Sessions.Lookup(token)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sessionToken{token: token, session: sess})
		ctx = logger.ToContext(ctx, logger.String("user", sess.Username))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug(r.Context(), "http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func currentSession(r *http.Request) sessionToken {
	st, _ := r.Context().Value(sessionKey{}).(sessionToken)
	return st
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.svc.Store != nil {
		if err := h.svc.Store.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.svc.Sessions.Start(sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Username: sess.Username, Role: string(sess.Role)})
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st := currentSession(r)
	if err := h.svc.Auth.Logout(r.Context(), st.session); err != nil {
		h.fail(w, r, err)
		return
	}
	h.svc.Sessions.End(st.token)
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "logged out"})
}

func (h *HTTPHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.Inventory.ListParts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartResponses(parts))
}

func (h *HTTPHandler) ListSellableParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.Inventory.ListSellableParts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPartResponses(parts))
}

func (h *HTTPHandler) AddPart(w http.ResponseWriter, r *http.Request) {
	var req AddPartRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.svc.Inventory.AddPart(r.Context(), currentSession(r).session, domain.NewPart{
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		VehicleType:  req.VehicleType,
		Stock:        req.Stock,
		Price:        req.Price,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (h *HTTPHandler) DeletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Inventory.DeletePart(r.Context(), currentSession(r).session, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "part deleted"})
}

func (h *HTTPHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.svc.Inventory.ListVendors(r.Context(), currentSession(r).session)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorResponses(vendors))
}

func (h *HTTPHandler) AddVendor(w http.ResponseWriter, r *http.Request) {
	var req AddVendorRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.svc.Inventory.AddVendor(r.Context(), currentSession(r).session, domain.NewVendor{
		Name:    req.Name,
		Contact: req.Contact,
		Parts:   req.Parts,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (h *HTTPHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	h.recordSale(w, r, h.svc.Sales.RecordSale)
}

func (h *HTTPHandler) RecordCustomerSale(w http.ResponseWriter, r *http.Request) {
	h.recordSale(w, r, h.svc.Sales.RecordCustomerSale)
}

type saleFunc func(context.Context, domain.Session, domain.SaleRequest) (*domain.SaleReceipt, error)

func (h *HTTPHandler) recordSale(w http.ResponseWriter, r *http.Request, record saleFunc) {
	var req SaleRequest
	if !decode(w, r, &req) {
		return
	}

	receipt, err := record(r.Context(), currentSession(r).session, domain.SaleRequest{
		PartID:        req.PartID,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		RequestID:     req.RequestID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.Sales.ListSales(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponses(sales))
}

func (h *HTTPHandler) ListSaleLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.Sales.ListSaleLines(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleLineResponses(lines))
}

func auditQuery(r *http.Request) (domain.AuditQuery, error) {
	q := r.URL.Query()
	query := domain.AuditQuery{
		Action:     domain.ActionType(q.Get("action")),
		Username:   q.Get("username"),
		DatePrefix: q.Get("date"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return domain.AuditQuery{}, &domain.ValidationError{Field: "limit", Reason: "must be a non-negative integer"}
		}
		query.Limit = limit
	}
	return query, nil
}

func (h *HTTPHandler) ViewAuditLog(w http.ResponseWriter, r *http.Request) {
	q, err := auditQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.svc.Audit.ViewLog(r.Context(), currentSession(r).session, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponses(entries))
}

func (h *HTTPHandler) ExportAuditLog(w http.ResponseWriter, r *http.Request) {
	q, err := auditQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.svc.Audit.ExportRows(r.Context(), currentSession(r).session, q, exportTarget(r, "audit_logs.csv"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RowsResponse{Rows: rows})
}

// RecordAudit lets the presentation layer log actions that happen entirely
// on its side, such as writing an export file.
func (h *HTTPHandler) RecordAudit(w http.ResponseWriter, r *http.Request) {
	var req RecordAuditRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.svc.Audit.Record(r.Context(), currentSession(r).session, domain.ActionType(req.Action), req.Details)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, StatusResponse{Success: true, Message: "recorded"})
}

func (h *HTTPHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.Reports.SalesReport(r.Context(), currentSession(r).session, r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponses(sales))
}

func (h *HTTPHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	months, err := h.svc.Reports.MonthlySales(r.Context(), currentSession(r).session)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyResponses(months))
}

func (h *HTTPHandler) ExportMonthlySales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Reports.MonthlySalesRows(r.Context(), currentSession(r).session,
		exportTarget(r, "Monthly_Sales_Report.pdf"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RowsResponse{Rows: rows})
}

func weeklyFilter(r *http.Request) domain.WeeklyDemandFilter {
	q := r.URL.Query()
	return domain.WeeklyDemandFilter{StartDate: q.Get("start"), EndDate: q.Get("end"), PartID: q.Get("part_id")}
}

func (h *HTTPHandler) WeeklyDemand(w http.ResponseWriter, r *http.Request) {
	demand, err := h.svc.Reports.WeeklyDemand(r.Context(), currentSession(r).session, weeklyFilter(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyResponses(demand))
}

func (h *HTTPHandler) ExportWeeklyDemand(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Reports.WeeklyDemandRows(r.Context(), currentSession(r).session, weeklyFilter(r),
		exportTarget(r, "weekly_demand.csv"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RowsResponse{Rows: rows})
}

func exportTarget(r *http.Request, fallback string) string {
	if t := r.URL.Query().Get("target"); t != "" {
		return t
	}
	return fallback
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path), logger.ErrorF(err))
	}
	writeJSON(w, status, StatusResponse{Success: false, Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{
			Success: false,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
