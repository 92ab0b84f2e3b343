package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proshop/proshop/pkg/httputil"
	"github.com/proshop/proshop/pkg/middleware"
	"github.com/proshop/proshop/pkg/observability"
	"github.com/proshop/proshop/pkg/orders"
)

// OrderHandlers handles order placement and fulfillment requests.
type OrderHandlers struct {
	store  orders.Store
	logger *observability.Logger
}

// RegisterRoutes registers order routes with their guards.
func (h *OrderHandlers) RegisterRoutes(router *mux.Router, protect, admin Guard) {
	router.Handle("/api/orders", protect(h.create)).Methods("POST")
	router.Handle("/api/orders/mine", protect(h.listMine)).Methods("GET")
	router.Handle("/api/orders/{id}", protect(h.get)).Methods("GET")
	router.Handle("/api/orders/{id}/pay", protect(h.pay)).Methods("PUT")

	router.Handle("/api/orders", admin(h.list)).Methods("GET")
	router.Handle("/api/orders/{id}/deliver", admin(h.deliver)).Methods("PUT")
}

// create handles POST /api/orders
func (h *OrderHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items         []orders.Item          `json:"items"`
		Shipping      orders.ShippingAddress `json:"shipping"`
		PaymentMethod string                 `json:"payment_method"`
		Total         float64                `json:"total"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		httputil.WriteBadRequest(w, "no order items")
		return
	}

	user := middleware.GetUser(r)
	order := &orders.Order{
		UserID:        user.ID,
		Items:         req.Items,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		Total:         req.Total,
	}
	if err := h.store.Create(r.Context(), order); err != nil {
		h.internalError(w, "order creation failed", err)
		return
	}

	h.logger.WithField("order_id", order.ID).WithField("user_id", user.ID).Info("order placed")
	httputil.WriteCreated(w, order)
}

// listMine handles GET /api/orders/mine
func (h *OrderHandlers) listMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	result, err := h.store.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, "order listing failed", err)
		return
	}
	if result == nil {
		result = []*orders.Order{}
	}
	httputil.WriteSuccess(w, result)
}

// get handles GET /api/orders/{id}. An order is visible to its owner and to
// administrators; anyone else gets the same not-found as a missing order.
func (h *OrderHandlers) get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, order)
}

// pay handles PUT /api/orders/{id}/pay. Only the order owner can pay;
// administrators can view any order but cannot pay on a customer's behalf.
func (h *OrderHandlers) pay(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	if order.UserID != middleware.GetUser(r).ID {
		httputil.WriteForbidden(w, "only the order owner can pay")
		return
	}

	updated, err := h.store.MarkPaid(r.Context(), order.ID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			httputil.WriteNotFoundError(w, orders.ErrNotFound.Error())
			return
		}
		h.internalError(w, "order payment update failed", err)
		return
	}

	h.logger.WithField("order_id", order.ID).Info("order paid")
	httputil.WriteSuccess(w, updated)
}

// deliver handles PUT /api/orders/{id}/deliver (admin)
func (h *OrderHandlers) deliver(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	updated, err := h.store.MarkDelivered(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			httputil.WriteNotFoundError(w, orders.ErrNotFound.Error())
			return
		}
		h.internalError(w, "order delivery update failed", err)
		return
	}

	h.logger.WithField("order_id", id).Info("order delivered")
	httputil.WriteSuccess(w, updated)
}

// list handles GET /api/orders (admin)
func (h *OrderHandlers) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.List(r.Context())
	if err != nil {
		h.internalError(w, "order listing failed", err)
		return
	}
	if result == nil {
		result = []*orders.Order{}
	}
	httputil.WriteSuccess(w, result)
}

// loadVisible loads the order from the path and enforces owner-or-admin
// visibility, writing the error response itself on failure.
func (h *OrderHandlers) loadVisible(w http.ResponseWriter, r *http.Request) (*orders.Order, bool) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return nil, false
	}

	order, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			httputil.WriteNotFoundError(w, orders.ErrNotFound.Error())
			return nil, false
		}
		h.internalError(w, "order lookup failed", err)
		return nil, false
	}

	user := middleware.GetUser(r)
	if order.UserID != user.ID && !user.IsAdmin {
		httputil.WriteNotFoundError(w, orders.ErrNotFound.Error())
		return nil, false
	}
	return order, true
}

func (h *OrderHandlers) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.WithError(err).Error(msg)
	httputil.WriteInternalError(w)
}
