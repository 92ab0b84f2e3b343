package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/proshop/proshop/pkg/auth"
	"github.com/proshop/proshop/pkg/httputil"
	"github.com/proshop/proshop/pkg/middleware"
	"github.com/proshop/proshop/pkg/observability"
	"github.com/proshop/proshop/pkg/users"
)

// invalidCredentialsMsg is deliberately identical for an unknown email and a
// wrong password, so login cannot be used to enumerate accounts.
const invalidCredentialsMsg = "invalid email or password"

// UserHandlers handles authentication and account management requests.
type UserHandlers struct {
	store         users.Store
	issuer        *auth.TokenIssuer
	limiter       middleware.LoginLimiter
	metrics       *observability.Metrics
	logger        *observability.Logger
	secureCookies bool
}

// RegisterRoutes registers user routes with their guards.
func (h *UserHandlers) RegisterRoutes(router *mux.Router, protect, admin Guard) {
	router.HandleFunc("/api/users/login", h.login).Methods("POST")
	router.HandleFunc("/api/users/logout", h.logout).Methods("POST")
	router.HandleFunc("/api/users", h.register).Methods("POST")

	router.Handle("/api/users/profile", protect(h.getProfile)).Methods("GET")
	router.Handle("/api/users/profile", protect(h.updateProfile)).Methods("PUT")

	router.Handle("/api/users", admin(h.listUsers)).Methods("GET")
	router.Handle("/api/users/{id}", admin(h.getUser)).Methods("GET")
	router.Handle("/api/users/{id}", admin(h.updateUser)).Methods("PUT")
	router.Handle("/api/users/{id}", admin(h.deleteUser)).Methods("DELETE")
}

func (h *UserHandlers) loginOutcome(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *UserHandlers) sessionIssued() {
	if h.metrics != nil {
		h.metrics.SessionsIssuedTotal.Inc()
	}
}

// login handles POST /api/users/login
func (h *UserHandlers) login(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		allowed, err := h.limiter.Allow(r.Context(), "login:"+middleware.ClientIP(r))
		if err != nil {
			// Limiter outage fails open; the attempt still counts below.
			h.logger.WithError(err).Warn("login rate limiter unavailable")
		}
		if !allowed {
			h.loginOutcome("rate_limited")
			httputil.WriteTooManyRequests(w, "too many login attempts")
			return
		}
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}

	user, err := h.store.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			h.loginOutcome("invalid")
			httputil.WriteUnauthorized(w, invalidCredentialsMsg)
			return
		}
		h.internalError(w, "login lookup failed", err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.loginOutcome("invalid")
		httputil.WriteUnauthorized(w, invalidCredentialsMsg)
		return
	}

	if !h.issueSession(w, user.ID) {
		return
	}
	h.loginOutcome("success")
	h.logger.WithField("user_id", user.ID).Info("user logged in")
	httputil.WriteSuccess(w, user.Profile())
}

// register handles POST /api/users
func (h *UserHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") ||
		!httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, "password hashing failed", err)
		return
	}

	user := &users.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			httputil.WriteBadRequest(w, users.ErrDuplicateEmail.Error())
			return
		}
		h.internalError(w, "user creation failed", err)
		return
	}

	if !h.issueSession(w, user.ID) {
		return
	}
	h.logger.WithField("user_id", user.ID).Info("user registered")
	httputil.WriteCreated(w, user.Profile())
}

// logout handles POST /api/users/logout. It requires no authentication and
// is a no-op when no valid session existed.
func (h *UserHandlers) logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	httputil.WriteSuccess(w, map[string]string{"message": "logged out"})
}

// getProfile handles GET /api/users/profile
func (h *UserHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	httputil.WriteSuccess(w, user.Profile())
}

// profileUpdateRequest distinguishes absent fields from present-but-empty
// ones, so a legitimately empty value is never silently discarded.
type profileUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// updateProfile handles PUT /api/users/profile. The password is only
// rehashed when a new one is explicitly supplied.
func (h *UserHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req profileUpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		if !httputil.RequireNonEmpty(w, *req.Email, "email") {
			return
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if !httputil.RequireNonEmpty(w, *req.Password, "password") {
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.internalError(w, "password hashing failed", err)
			return
		}
		user.PasswordHash = hash
	}

	if err := h.saveUser(r.Context(), w, user); err != nil {
		return
	}
	httputil.WriteSuccess(w, user.Profile())
}

// listUsers handles GET /api/users (admin)
func (h *UserHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		h.internalError(w, "user listing failed", err)
		return
	}
	profiles := make([]users.Profile, 0, len(all))
	for _, u := range all {
		profiles = append(profiles, u.Profile())
	}
	httputil.WriteSuccess(w, profiles)
}

// getUser handles GET /api/users/{id} (admin). The password hash is never
// included in the response.
func (h *UserHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httputil.WriteNotFoundError(w, users.ErrNotFound.Error())
			return
		}
		h.internalError(w, "user lookup failed", err)
		return
	}
	httputil.WriteSuccess(w, user.Profile())
}

// updateUser handles PUT /api/users/{id} (admin). The administrator flag is
// only mutable through this privileged route.
func (h *UserHandlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		IsAdmin *bool   `json:"is_admin"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httputil.WriteNotFoundError(w, users.ErrNotFound.Error())
			return
		}
		h.internalError(w, "user lookup failed", err)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		if !httputil.RequireNonEmpty(w, *req.Email, "email") {
			return
		}
		user.Email = *req.Email
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := h.saveUser(r.Context(), w, user); err != nil {
		return
	}
	httputil.WriteSuccess(w, user.Profile())
}

// deleteUser handles DELETE /api/users/{id} (admin). Records flagged
// administrator cannot be deleted through this path.
func (h *UserHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httputil.WriteNotFoundError(w, users.ErrNotFound.Error())
			return
		}
		h.internalError(w, "user lookup failed", err)
		return
	}

	if user.IsAdmin {
		httputil.WriteBadRequest(w, "cannot delete admin user")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			httputil.WriteNotFoundError(w, users.ErrNotFound.Error())
			return
		}
		h.internalError(w, "user deletion failed", err)
		return
	}

	h.logger.WithField("user_id", id).Info("user removed")
	httputil.WriteSuccess(w, map[string]string{"message": "user removed"})
}

// issueSession signs a token for the user and attaches the session cookie.
func (h *UserHandlers) issueSession(w http.ResponseWriter, userID string) bool {
	token, err := h.issuer.Issue(userID)
	if err != nil {
		h.internalError(w, "session issuance failed", err)
		return false
	}
	auth.SetSessionCookie(w, token, h.secureCookies)
	h.sessionIssued()
	return true
}

// saveUser persists a user and writes the error response on failure.
func (h *UserHandlers) saveUser(ctx context.Context, w http.ResponseWriter, user *users.User) error {
	err := h.store.Save(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, users.ErrDuplicateEmail):
		httputil.WriteBadRequest(w, users.ErrDuplicateEmail.Error())
	case errors.Is(err, users.ErrNotFound):
		httputil.WriteNotFoundError(w, users.ErrNotFound.Error())
	default:
		h.internalError(w, "user save failed", err)
	}
	return err
}

// internalError logs the failure server-side and returns a generic 500.
func (h *UserHandlers) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.WithError(err).Error(msg)
	if h.metrics != nil {
		h.metrics.StoreErrorsTotal.WithLabelValues("users").Inc()
	}
	httputil.WriteInternalError(w)
}
