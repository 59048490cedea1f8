package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"orderstock/internal/core/service"
)

const maxDescriptionLen = 500

type HTTPHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

func NewHTTPHandler(orders *service.OrderService, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{orders: orders, logger: logger}
}

func (h *HTTPHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
	})
	return r
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	if _, err := uuid.Parse(req.ProductID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}
	if req.Description == "" || len(req.Description) > maxDescriptionLen {
		writeError(w, http.StatusBadRequest, "invalid_description", "description is required and must be at most 500 characters")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}
	if req.UnitPrice <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_unit_price", "unit_price must be greater than zero")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.ProductID, req.Description, req.Quantity, req.UnitPrice)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListActiveOrders(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrderToResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	if err := h.orders.CancelOrder(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", "unknown product")
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", "unknown order")
	case errors.Is(err, service.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", "not enough stock available")
	case errors.Is(err, service.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "already_cancelled", "order is already cancelled")
	default:
		h.logger.Error().
			Str("request_id", middleware.GetReqID(r.Context())).
			Err(err).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
