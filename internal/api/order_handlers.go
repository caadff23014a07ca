package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/codform/order-api/internal/intake"
	"github.com/codform/order-api/pkg/apperrors"
	"github.com/codform/order-api/pkg/middleware"
)

// submissionResponse is the exact shape the storefront widget expects.
type submissionResponse struct {
	Success        bool   `json:"success"`
	OrderID        string `json:"orderId,omitempty"`
	ShopifyOrderID string `json:"shopifyOrderId,omitempty"`
	OrderNumber    string `json:"orderNumber,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// createOrderHandler accepts a COD submission from the widget. The
// CORS middleware has already answered OPTIONS preflights and set the
// cross-origin headers on this response.
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var sub intake.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.respondSubmission(w, http.StatusBadRequest, submissionResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}
	defer r.Body.Close()

	meta := intake.RequestMeta{
		IPAddress: middleware.ClientIP(r, s.trustForwardedFor),
		UserAgent: r.UserAgent(),
	}

	result, err := s.orders.SubmitOrder(r.Context(), &sub, meta)
	if err != nil {
		code := apperrors.StatusCode(err)
		message := err.Error()
		if code >= http.StatusInternalServerError {
			message = "Failed to create order"
		}
		s.respondSubmission(w, code, submissionResponse{
			Success: false,
			Error:   message,
		})
		return
	}

	s.respondSubmission(w, http.StatusCreated, submissionResponse{
		Success:        true,
		OrderID:        result.OrderID,
		ShopifyOrderID: result.ShopifyOrderID,
		OrderNumber:    result.OrderNumber,
		Message:        result.Message,
	})
}

func (s *Server) respondSubmission(w http.ResponseWriter, code int, resp submissionResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to marshal submission response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(payload)
}

// getOrdersHandler lists a merchant's orders for the dashboard.
func (s *Server) getOrdersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	shop := query.Get("shop")
	if shop == "" {
		s.respondWithError(w, http.StatusBadRequest, "shop query parameter is required")
		return
	}

	limit := parseIntParam(query.Get("limit"), 50)
	offset := parseIntParam(query.Get("offset"), 0)

	orders, err := s.orders.GetOrders(r.Context(), shop, query.Get("status"), limit, offset)
	if err != nil {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    orders,
	})
}

// getOrderByIDHandler returns a single order.
func (s *Server) getOrderByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.orders.GetOrder(r.Context(), id)
	if err != nil {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// updateOrderStatusHandler sets an order's status from the dashboard.
func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	order, err := s.orders.UpdateOrderStatus(r.Context(), id, body.Status)
	if err != nil {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// getStatsHandler aggregates a merchant's order stats.
func (s *Server) getStatsHandler(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		s.respondWithError(w, http.StatusBadRequest, "shop query parameter is required")
		return
	}

	stats, err := s.orders.GetStats(r.Context(), shop)
	if err != nil {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    stats,
	})
}

func parseIntParam(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return defaultValue
	}

	return v
}
