package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proshop/proshop/pkg/httputil"
	"github.com/proshop/proshop/pkg/middleware"
	"github.com/proshop/proshop/pkg/observability"
	"github.com/proshop/proshop/pkg/products"
)

// ProductHandlers handles catalog and review requests.
type ProductHandlers struct {
	store  products.Store
	logger *observability.Logger
}

// RegisterRoutes registers catalog routes with their guards.
func (h *ProductHandlers) RegisterRoutes(router *mux.Router, protect, admin Guard) {
	router.HandleFunc("/api/products", h.list).Methods("GET")
	router.HandleFunc("/api/products/top", h.top).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.get).Methods("GET")

	router.Handle("/api/products", admin(h.create)).Methods("POST")
	router.Handle("/api/products/{id}", admin(h.update)).Methods("PUT")
	router.Handle("/api/products/{id}", admin(h.delete)).Methods("DELETE")

	router.Handle("/api/products/{id}/reviews", protect(h.addReview)).Methods("POST")
}

// list handles GET /api/products
func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	keyword := httputil.ParseQueryString(r, "keyword", "")
	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	pageSize, err := httputil.ParseQueryInt(r, "page_size", 10)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.store.List(r.Context(), keyword, page, pageSize)
	if err != nil {
		h.internalError(w, "product listing failed", err)
		return
	}
	httputil.WriteSuccess(w, result)
}

// top handles GET /api/products/top
func (h *ProductHandlers) top(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseQueryInt(r, "limit", 3)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.store.Top(r.Context(), limit)
	if err != nil {
		h.internalError(w, "top product listing failed", err)
		return
	}
	if result == nil {
		result = []*products.Product{}
	}
	httputil.WriteSuccess(w, result)
}

// get handles GET /api/products/{id}
func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	product, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			httputil.WriteNotFoundError(w, products.ErrNotFound.Error())
			return
		}
		h.internalError(w, "product lookup failed", err)
		return
	}

	reviews, err := h.store.Reviews(r.Context(), id)
	if err != nil {
		h.internalError(w, "review listing failed", err)
		return
	}
	if reviews == nil {
		reviews = []*products.Review{}
	}

	httputil.WriteSuccess(w, struct {
		*products.Product
		Reviews []*products.Review `json:"reviews"`
	}{product, reviews})
}

type productRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"count_in_stock"`
}

// create handles POST /api/products (admin)
func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}

	creator := middleware.GetUser(r)
	product := &products.Product{
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Category:     req.Category,
		Image:        req.Image,
		Price:        req.Price,
		CountInStock: req.CountInStock,
		CreatedBy:    creator.ID,
	}
	if err := h.store.Create(r.Context(), product); err != nil {
		h.internalError(w, "product creation failed", err)
		return
	}

	h.logger.WithField("product_id", product.ID).Info("product created")
	httputil.WriteCreated(w, product)
}

// update handles PUT /api/products/{id} (admin)
func (h *ProductHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name         *string  `json:"name"`
		Description  *string  `json:"description"`
		Brand        *string  `json:"brand"`
		Category     *string  `json:"category"`
		Image        *string  `json:"image"`
		Price        *float64 `json:"price"`
		CountInStock *int     `json:"count_in_stock"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	product, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			httputil.WriteNotFoundError(w, products.ErrNotFound.Error())
			return
		}
		h.internalError(w, "product lookup failed", err)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CountInStock != nil {
		product.CountInStock = *req.CountInStock
	}

	if err := h.store.Save(r.Context(), product); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			httputil.WriteNotFoundError(w, products.ErrNotFound.Error())
			return
		}
		h.internalError(w, "product save failed", err)
		return
	}
	httputil.WriteSuccess(w, product)
}

// delete handles DELETE /api/products/{id} (admin)
func (h *ProductHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			httputil.WriteNotFoundError(w, products.ErrNotFound.Error())
			return
		}
		h.internalError(w, "product deletion failed", err)
		return
	}

	h.logger.WithField("product_id", id).Info("product removed")
	httputil.WriteSuccess(w, map[string]string{"message": "product removed"})
}

// addReview handles POST /api/products/{id}/reviews. One review per user per
// product.
func (h *ProductHandlers) addReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		httputil.WriteBadRequest(w, "rating must be between 1 and 5")
		return
	}

	user := middleware.GetUser(r)
	review := &products.Review{
		ProductID: id,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.store.AddReview(r.Context(), review); err != nil {
		switch {
		case errors.Is(err, products.ErrDuplicateReview):
			httputil.WriteBadRequest(w, products.ErrDuplicateReview.Error())
		case errors.Is(err, products.ErrNotFound):
			httputil.WriteNotFoundError(w, products.ErrNotFound.Error())
		default:
			h.internalError(w, "review creation failed", err)
		}
		return
	}

	httputil.WriteCreated(w, review)
}

func (h *ProductHandlers) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.WithError(err).Error(msg)
	httputil.WriteInternalError(w)
}
