package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/utils"
)

type ContextKey string

const IdentityKey = ContextKey("identity")

const SessionCookie = "homlet_session"

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFrom returns the session identity attached to the request context.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*models.Identity)
	return identity, ok && identity != nil
}

// Session resolves the session cookie into an identity on the request context.
// Requests without a valid session continue anonymously.
func Session(signer *utils.SessionSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := signer.Validate(c.Value)
			if err != nil {
				log.Printf("Dropping session for %s %s: %v", r.Method, r.URL.Path, err)
				ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func StartSession(w http.ResponseWriter, signer *utils.SessionSigner, identity models.Identity) error {
	token, err := signer.Generate(identity)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(signer.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
