package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lapakku/backend/internal/cache"
	"lapakku/backend/internal/domain"
	"lapakku/backend/internal/report"
	"lapakku/backend/internal/service"
	"lapakku/backend/internal/store"
)

type API struct {
	service       *service.Service
	engine        *report.Engine
	reports       cache.ReportCache
	reportTTL     time.Duration
	allowedOrigin string
}

func New(svc *service.Service, engine *report.Engine, reports cache.ReportCache, reportTTL time.Duration, allowedOrigin string) *API {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if reportTTL < time.Second {
		reportTTL = 30 * time.Second
	}
	return &API{
		service:       svc,
		engine:        engine,
		reports:       reports,
		reportTTL:     reportTTL,
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)

	mux.HandleFunc("/api/v1/products", a.handleProducts)
	mux.HandleFunc("/api/v1/products/", a.handleProductActions)
	mux.HandleFunc("/api/v1/customers", a.handleCustomers)
	mux.HandleFunc("/api/v1/customers/", a.handleCustomerActions)
	mux.HandleFunc("/api/v1/orders", a.handleOrders)
	mux.HandleFunc("/api/v1/orders/", a.handleOrderActions)

	mux.HandleFunc("/api/v1/reports/daily", a.handleDailyReport)
	mux.HandleFunc("/api/v1/reports/sales", a.handleSalesReport)
	mux.HandleFunc("/api/v1/reports/payments", a.handlePaymentReport)
	mux.HandleFunc("/api/v1/reports/customers", a.handleCustomerReport)
	mux.HandleFunc("/api/v1/reports/inventory", a.handleInventoryReport)
	mux.HandleFunc("/api/v1/reports/trends", a.handleTrendReport)
	mux.HandleFunc("/api/v1/reports/top-products", a.handleTopProductsReport)

	return a.withMiddleware(mux)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeError(w, crudStatus(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	id := pathTail(r.URL.Path, "/api/v1/products/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := a.service.GetProduct(r.Context(), id)
		if err != nil {
			writeError(w, crudStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodPatch:
		var req domain.ProductUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		updated, err := a.service.UpdateProduct(r.Context(), id, req)
		if err != nil {
			writeError(w, crudStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": updated})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := a.service.ListCustomers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
	case http.MethodPost:
		var req domain.CustomerCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		customer, err := a.service.CreateCustomer(r.Context(), req)
		if err != nil {
			writeError(w, crudStatus(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCustomerActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	id := pathTail(r.URL.Path, "/api/v1/customers/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("customer id required"))
		return
	}

	customer, err := a.service.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, crudStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := parsePositiveLimit(r.URL.Query().Get("limit"), 100, 1000)
		orders, err := a.service.ListOrders(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	case http.MethodPost:
		var req domain.OrderRecordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		order, err := a.service.RecordOrder(r.Context(), req)
		if err != nil {
			writeError(w, crudStatus(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"order": order})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	id := pathTail(r.URL.Path, "/api/v1/orders/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("order id required"))
		return
	}

	order, err := a.service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, crudStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// Report handlers validate query parameters up front and return 400 for
// malformed input. Once parameters parse, the response is always 200:
// data-level trouble surfaces inside the report body, never as an HTTP
// failure.

func (a *API) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	date, ok := parseDateParam(w, r.URL.Query().Get("date"), time.Now().UTC())
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	if format == "csv" {
		rep := a.engine.DailySales(r.Context(), date)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily-sales-%s.csv\"", rep.Date))
		_, _ = w.Write([]byte(dailySalesToCSV(rep)))
		return
	}

	a.serveReport(w, r, cache.Key("daily", date.Format("2006-01-02")), func() any {
		return a.engine.DailySales(r.Context(), date)
	})
}

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}
	period, ok := parsePeriodParam(w, r.URL.Query().Get("period"), report.PeriodDaily)
	if !ok {
		return
	}

	key := cache.Key("sales", start.Format("2006-01-02"), end.Format("2006-01-02"), period)
	a.serveReport(w, r, key, func() any {
		return a.engine.SalesRange(r.Context(), start, end, period)
	})
}

func (a *API) handlePaymentReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}

	key := cache.Key("payments", start.Format("2006-01-02"), end.Format("2006-01-02"))
	a.serveReport(w, r, key, func() any {
		return a.engine.PaymentMix(r.Context(), start, end)
	})
}

func (a *API) handleCustomerReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	customerID := strings.TrimSpace(r.URL.Query().Get("customer_id"))

	a.serveReport(w, r, cache.Key("customers", customerID), func() any {
		return a.engine.CustomerSegmentation(r.Context(), customerID)
	})
}

func (a *API) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	threshold := 10
	if raw := strings.TrimSpace(r.URL.Query().Get("threshold")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 1000 {
			writeError(w, http.StatusBadRequest, errors.New("threshold must be between 0 and 1000"))
			return
		}
		threshold = parsed
	}

	a.serveReport(w, r, cache.Key("inventory", strconv.Itoa(threshold)), func() any {
		return a.engine.InventoryValuation(r.Context(), threshold)
	})
}

func (a *API) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	weeks := 12
	if raw := strings.TrimSpace(r.URL.Query().Get("weeks")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 104 {
			writeError(w, http.StatusBadRequest, errors.New("weeks must be between 1 and 104"))
			return
		}
		weeks = parsed
	}
	period, ok := parsePeriodParam(w, r.URL.Query().Get("period"), report.PeriodWeekly)
	if !ok {
		return
	}

	a.serveReport(w, r, cache.Key("trends", strconv.Itoa(weeks), period), func() any {
		return a.engine.Trends(r.Context(), weeks, period)
	})
}

func (a *API) handleTopProductsReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	start, end, ok := parseRangeParams(w, r)
	if !ok {
		return
	}
	limit := 10
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be between 1 and 1000"))
			return
		}
		limit = parsed
	}

	key := cache.Key("top-products", start.Format("2006-01-02"), end.Format("2006-01-02"), strconv.Itoa(limit))
	a.serveReport(w, r, key, func() any {
		return a.engine.TopProducts(r.Context(), start, end, limit)
	})
}

// serveReport answers from the report cache when it can and falls back to
// building the report. Cache trouble is logged and ignored; a cold or
// broken cache must never change the response.
func (a *API) serveReport(w http.ResponseWriter, r *http.Request, key string, build func() any) {
	ctx := r.Context()

	if payload, found, err := a.reports.Get(ctx, key); err != nil {
		log.Printf("[httpapi] WARN: report cache get failed key=%s: %v", key, err)
	} else if found {
		writeRawJSON(w, http.StatusOK, payload)
		return
	}

	rep := build()
	payload, err := json.Marshal(rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := a.reports.Set(ctx, key, payload, a.reportTTL); err != nil {
		log.Printf("[httpapi] WARN: report cache set failed key=%s: %v", key, err)
	}
	writeRawJSON(w, http.StatusOK, payload)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func dailySalesToCSV(rep domain.DailySalesReport) string {
	lines := []string{
		"section,key,value",
		fmt.Sprintf("summary,date,%s", rep.Date),
		fmt.Sprintf("summary,order_count,%d", rep.OrderCount),
		fmt.Sprintf("summary,completed_orders,%d", rep.CompletedOrders),
		fmt.Sprintf("summary,refunded_orders,%d", rep.RefundedOrders),
		fmt.Sprintf("summary,cancelled_orders,%d", rep.CancelledOrders),
		fmt.Sprintf("summary,gross_revenue,%s", rep.GrossRevenue),
		fmt.Sprintf("summary,total_refunds,%s", rep.TotalRefunds),
		fmt.Sprintf("summary,net_revenue,%s", rep.NetRevenue),
		fmt.Sprintf("summary,avg_order_value,%s", rep.AvgOrderValue),
	}
	for _, payment := range rep.Payments {
		lines = append(lines, fmt.Sprintf("payment,%s_orders,%d", payment.Method, payment.Orders))
		lines = append(lines, fmt.Sprintf("payment,%s_amount,%s", payment.Method, payment.Amount))
	}
	for _, channel := range rep.Channels {
		lines = append(lines, fmt.Sprintf("channel,%s_orders,%d", channel.Channel, channel.Orders))
		lines = append(lines, fmt.Sprintf("channel,%s_amount,%s", channel.Channel, channel.Amount))
	}
	for _, product := range rep.TopProducts {
		lines = append(lines, fmt.Sprintf("top_product,%s,%s", csvField(product.Name), product.Revenue))
	}
	return strings.Join(lines, "\n") + "\n"
}

func csvField(raw string) string {
	if strings.ContainsAny(raw, ",\"\n") {
		return "\"" + strings.ReplaceAll(raw, "\"", "\"\"") + "\""
	}
	return raw
}

func parseDateParam(w http.ResponseWriter, raw string, fallback time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

// parseRangeParams reads start/end, defaulting to the trailing 30 days.
func parseRangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	end, ok := parseDateParam(w, r.URL.Query().Get("end"), now)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, ok := parseDateParam(w, r.URL.Query().Get("start"), end.AddDate(0, 0, -29))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parsePeriodParam(w http.ResponseWriter, raw string, fallback string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback, true
	}
	if !report.IsPeriod(raw) {
		writeError(w, http.StatusBadRequest, errors.New("period must be daily, weekly or monthly"))
		return "", false
	}
	return raw, true
}

func pathTail(path string, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimPrefix(path, prefix), "/"))
}

func crudStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx responses carry a generic message so internal details (SQL
	// errors, file paths) never reach the client.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
