package middleware

import (
	"mime"
	"net/http"

	apperrors "adhub/pkg/errors"
	httputil "adhub/pkg/http"
	"adhub/pkg/logger"
)

// ContentTypeValidation requires a JSON body on writes. Body-less writes such as
// PATCH .../approve pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", GetRequestID(r.Context()),
						"content_type", r.Header.Get("Content-Type"),
						"path", r.URL.Path,
						"method", r.Method,
					)
					writeErr := httputil.WriteError(w, apperrors.New(
						apperrors.CodeUnsupportedMediaType,
						"Content-Type must be application/json",
						http.StatusUnsupportedMediaType,
					))
					if writeErr != nil {
						log.Error("failed to write error response", "handler", "ContentTypeValidation", "operation", "WriteError", "error", writeErr)
					}
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// MaxBodySize caps request bodies; decoders see an error past the limit.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
