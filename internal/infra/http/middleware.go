package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"subscribe-payflow/internal/infra/logging"
)

const (
	readerHeader = "X-Reader-ID"
	readerCookie = "swg_reader"
)

type readerKey struct{}

// readerID resolves the reader from the header or cookie, issuing a new
// cookie when neither is present.
func (s *Server) readerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(readerHeader)
		if id == "" {
			if c, err := r.Cookie(readerCookie); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     readerCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), readerKey{}, id)
		ctx = logging.WithReaderID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func readerFrom(r *http.Request) string {
	id, _ := r.Context().Value(readerKey{}).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.With(ctx, s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
