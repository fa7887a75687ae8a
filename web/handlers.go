package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/andrebq/pressbox/auth"
	"github.com/andrebq/pressbox/blog"
	"github.com/andrebq/pressbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

func (h *Handler) homepage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	posts, err := h.store.ListPosts(ctx)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, "homepage", map[string]interface{}{
		"Articles": posts,
	})
}

func (h *Handler) singlePost(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("postid"), 10, 64)
	if err != nil || id <= 0 {
		h.notFound(w, r)
		return
	}
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	post, err := h.store.GetPost(ctx, id)
	var notFound blog.PostNotFound
	if errors.As(err, &notFound) {
		h.notFound(w, r)
		return
	} else if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, "singlePost", map[string]interface{}{
		"Article": post,
	})
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if auth.IdentityFrom(r.Context()) != nil {
		// already in, nothing to see here
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", map[string]interface{}{
		"LoginMessage": h.takeFlash(r, "loginMessage"),
	})
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	outcome := auth.Authenticate(ctx, h.store, username, password)
	switch {
	case outcome.Err != nil:
		h.storeError(w, r, outcome.Err)
	case outcome.Failed():
		h.flash(r, "loginMessage", outcome.Message)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		token := auth.TokenFrom(r.Context())
		err := h.sessions.Bind(ctx, token, outcome.User.ID)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		// Bind restarted the server side expiry window, the cookie
		// lifetime has to restart with it
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   int(h.sessions.TTL().Seconds()),
			HttpOnly: true,
		})
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	}
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	if auth.IdentityFrom(r.Context()) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, "register", map[string]interface{}{
		"RegisterMessage": h.takeFlash(r, "registerMessage"),
	})
}

func (h *Handler) registerSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.flash(r, "registerMessage", "Username and password are required.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	_, err := h.store.LookupUser(ctx, username)
	var missing blog.UserNotFound
	switch {
	case err == nil:
		h.flash(r, "registerMessage", "That username is already taken.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	case !errors.As(err, &missing):
		h.storeError(w, r, err)
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to hash password")
		http.Error(w, "something bad happened, try again later", http.StatusInternalServerError)
		return
	}
	// the unique constraint still guards the race between the check
	// above and this insert
	_, err = h.store.CreateUser(ctx, username, hash)
	var taken blog.UsernameTaken
	if errors.As(err, &taken) {
		h.flash(r, "registerMessage", "That username is already taken.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	} else if err != nil {
		// a failed insert must never report success
		h.storeError(w, r, err)
		return
	}
	h.flash(r, "registerMessage", "Account created successfully.")
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	err := h.sessions.End(ctx, auth.TokenFrom(r.Context()))
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Warn().Err(err).Msg("Unable to end session")
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) adminPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin", map[string]interface{}{
		"AdminMessage": h.takeFlash(r, "adminMessage"),
	})
}

func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	user := auth.IdentityFrom(r.Context())
	post := blog.NewPost{
		Title:    r.PostFormValue("title"),
		Summary:  r.PostFormValue("summary"),
		FullText: r.PostFormValue("full_text"),
		Image:    r.PostFormValue("image"),
	}
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	_, err := h.store.CreatePost(ctx, post, user.ID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.flash(r, "adminMessage", "Post added successfully!")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "pressbox",
		"version": "0.1.0",
	})
}

func (h *Handler) flash(r *http.Request, key string, msg string) {
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	err := h.sessions.Flash(ctx, auth.TokenFrom(r.Context()), key, msg)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Warn().Err(err).Msg("Unable to store flash message")
	}
}

func (h *Handler) takeFlash(r *http.Request, key string) []string {
	ctx, cancel := h.storeCtx(r)
	defer cancel()
	msgs, err := h.sessions.TakeFlash(ctx, auth.TokenFrom(r.Context()), key)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Warn().Err(err).Msg("Unable to read flash messages")
		return nil
	}
	return msgs
}
