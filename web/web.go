package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/andrebq/pressbox/auth"
	authapi "github.com/andrebq/pressbox/auth/api"
	"github.com/andrebq/pressbox/blog"
	"github.com/andrebq/pressbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	// Handler holds the collaborators every route needs: the blog
	// store, the session manager and the parsed views.
	Handler struct {
		store        *blog.Store
		sessions     *auth.Sessions
		tmpl         map[string]*template.Template
		storeTimeout time.Duration
	}

	Options struct {
		// StaticDir is served under /static/, leave empty to disable
		StaticDir string
		// StoreTimeout bounds every store round-trip issued by a
		// handler, a request never hangs on a silent database
		StoreTimeout time.Duration
	}
)

const (
	sessionCookie = "pb_session"
)

// AsHandler wires the full request pipeline: access log, session
// resolution, form parsing, then route dispatch with a static-file
// short-circuit and a catch-all 404. Stages run strictly in that
// order, each one may terminate the request.
func AsHandler(ctx context.Context, store *blog.Store, sessions *auth.Sessions, opts Options) (http.Handler, error) {
	tmpl, err := parseViews()
	if err != nil {
		return nil, err
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	h := &Handler{
		store:        store,
		sessions:     sessions,
		tmpl:         tmpl,
		storeTimeout: opts.StoreTimeout,
	}

	realm := authapi.NewRealm("/login")

	router := httprouter.New()
	router.HandlerFunc("GET", "/", h.homepage)
	router.HandlerFunc("GET", "/blog/post/:postid", h.singlePost)
	router.HandlerFunc("GET", "/login", h.loginPage)
	router.HandlerFunc("POST", "/login", h.loginSubmit)
	router.HandlerFunc("GET", "/register", h.registerPage)
	router.HandlerFunc("POST", "/register", h.registerSubmit)
	router.HandlerFunc("GET", "/logout", h.logout)
	router.HandlerFunc("GET", "/healthz", h.healthz)
	router.Handler("GET", "/admin", realm.Protect(http.HandlerFunc(h.adminPage)))
	router.Handler("POST", "/article", realm.Protect(http.HandlerFunc(h.createArticle)))
	if opts.StaticDir != "" {
		router.ServeFiles("/static/*filepath", http.Dir(opts.StaticDir))
	}
	router.NotFound = http.HandlerFunc(h.notFound)

	var handler http.Handler = router
	handler = h.parseForms(handler)
	handler = h.withSession(handler)
	handler = accessLog(handler)
	return handler, nil
}

// storeCtx bounds one store round-trip issued on behalf of a request
func (h *Handler) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.storeTimeout)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, view string, data map[string]interface{}) {
	t, ok := h.tmpl[view]
	if !ok {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Str("view", view).Msg("View not found")
		http.Error(w, "something bad happened, try again later", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	if _, found := data["User"]; !found {
		data["User"] = auth.IdentityFrom(r.Context())
	}
	// render to memory first, a half-written body with a 200 status
	// is worse than a clean 500
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", data)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("view", view).Msg("Unable to render view")
		http.Error(w, "something bad happened, try again later", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// storeError hides the failure behind a generic 500, the cause goes
// to the log and never to the client
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Msg("Store failure")
	http.Error(w, "something bad happened, try again later", http.StatusInternalServerError)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Sorry, can't find that!", http.StatusNotFound)
}
