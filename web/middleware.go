package web

import (
	"net/http"
	"time"

	"github.com/andrebq/pressbox/auth"
	"github.com/andrebq/pressbox/internal/logutil"
)

type (
	statusRecorder struct {
		http.ResponseWriter
		status int
	}
)

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog is the outermost stage, every request is logged no
// matter what the stages below it decide to do.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log := logutil.GetOrDefault(r.Context())
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("Request served")
	})
}

// withSession resolves the session cookie into an identity before
// dispatch. Requests without a live session get a fresh anonymous
// one, so flash messages work for visitors that never logged in.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var token string
		if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}
		sctx, cancel := h.storeCtx(r)
		defer cancel()
		userID, live, err := h.sessions.Resolve(sctx, token)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		if !live {
			token, err = h.sessions.Begin(sctx)
			if err != nil {
				h.storeError(w, r, err)
				return
			}
			userID = 0
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(h.sessions.TTL().Seconds()),
				HttpOnly: true,
			})
		}
		user, err := auth.ResolveIdentity(sctx, h.store, userID)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		log := logutil.GetOrDefault(ctx).With().
			Str("session", logutil.Fingerprint(token)).
			Logger()
		ctx = logutil.WithLogger(ctx, log)
		ctx = auth.WithToken(ctx, token)
		if user != nil {
			ctx = auth.WithIdentity(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseForms runs before dispatch so handlers always observe an
// already parsed form and malformed bodies fail early.
func (h *Handler) parseForms(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			err := r.ParseForm()
			if err != nil {
				http.Error(w, "unable to parse submitted form", http.StatusBadRequest)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
