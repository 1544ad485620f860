// Package middleware holds chi-compatible middlewares specific to the API.
package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/rezkam/central/internal/infrastructure/http/response"
)

// MaxBodyBytes rejects request bodies larger than limit with a 413 in the
// standard error envelope.
//
// A declared Content-Length over the limit is rejected before reading.
// Otherwise the body is read through http.MaxBytesReader, which also covers
// chunked uploads, and handed to the next handler as an in-memory reader.
// Requests without a body pass through untouched.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				reject(w, r, limit)
				return
			}

			buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					reject(w, r, limit)
					return
				}
				slog.WarnContext(r.Context(), "failed to read request body",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err)
				response.BadRequest(w, "failed to read request body")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(buf))
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, limit int64) {
	slog.WarnContext(r.Context(), "request body over limit",
		"method", r.Method,
		"path", r.URL.Path,
		"content_length", r.ContentLength,
		"limit", limit)
	response.PayloadTooLarge(w, limit)
}
