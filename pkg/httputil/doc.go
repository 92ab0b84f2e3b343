// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteCreated(w, resource)
//	httputil.WriteBadRequest(w, "invalid input")
//	httputil.WriteUnauthorized(w, "not authenticated")
//
// Every error response uses the envelope {"error": message}.
//
// # Request Parsing
//
//	var req loginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // error response already written
//	}
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: authentication and authorization middleware
package httputil
