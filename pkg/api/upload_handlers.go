package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proshop/proshop/pkg/httputil"
	"github.com/proshop/proshop/pkg/observability"
	"github.com/proshop/proshop/pkg/uploads"
)

// maxUploadBytes caps a single product image.
const maxUploadBytes = 5 << 20

// UploadHandlers handles product image uploads.
type UploadHandlers struct {
	store  *uploads.FileStore
	logger *observability.Logger
}

// RegisterRoutes registers the upload route behind the admin guard.
func (h *UploadHandlers) RegisterRoutes(router *mux.Router, admin Guard) {
	router.Handle("/api/upload", admin(h.upload)).Methods("POST")
}

// upload handles POST /api/upload (admin). Expects a multipart form with an
// "image" file field and returns the public path of the stored file.
func (h *UploadHandlers) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	path, err := h.store.Save(file, header)
	if err != nil {
		if errors.Is(err, uploads.ErrUnsupportedType) {
			httputil.WriteBadRequest(w, uploads.ErrUnsupportedType.Error())
			return
		}
		h.logger.WithError(err).Error("image upload failed")
		httputil.WriteInternalError(w)
		return
	}

	h.logger.WithField("path", path).Info("image uploaded")
	httputil.WriteCreated(w, map[string]string{"image": path})
}
