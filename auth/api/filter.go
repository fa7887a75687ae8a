package api

import (
	"net/http"

	"github.com/andrebq/pressbox/auth"
)

type (
	// SecurityRealm gates the handlers that require an account.
	SecurityRealm struct {
		loginPath string
	}
)

func NewRealm(loginPath string) *SecurityRealm {
	return &SecurityRealm{loginPath: loginPath}
}

// Protect only lets requests with a resolved identity through,
// everyone else is sent to the login page. The check is side-effect
// free, identity resolution happened earlier in the pipeline.
func (s *SecurityRealm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFrom(r.Context()) == nil {
			http.Redirect(w, r, s.loginPath, http.StatusSeeOther)
			return
		}
		sensitive.ServeHTTP(w, r)
	})
}
