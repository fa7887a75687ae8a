package api

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/andrebq/pressbox/auth"
	"github.com/andrebq/pressbox/blog"
	"github.com/steinfletcher/apitest"
)

func TestProtect(t *testing.T) {
	realm := NewRealm("/login")
	var count uint32
	protected := realm.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint32(&count, 1)
		http.Error(w, "OK", http.StatusOK)
	}))

	apitest.Handler(protected).
		Get("/admin").
		Expect(t).
		Status(http.StatusSeeOther).
		Header("Location", "/login").
		End()

	user := &blog.User{ID: 1, Username: "alice"}
	resolved := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), user)))
	})
	apitest.Handler(resolved).
		Get("/admin").
		Expect(t).
		Status(http.StatusOK).
		End()

	if count != 1 {
		t.Fatal("the protected handler must run only for resolved identities")
	}
}
