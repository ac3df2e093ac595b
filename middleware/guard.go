package middleware

import (
	"log"
	"net/http"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"github.com/dcode-github/homlet/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	loginPath          = "/auth/login"
	homePath           = "/"
	agentDashboardPath = "/agent/dashboard"
)

// Denial tells the guard where to send a rejected request and what to say.
type Denial struct {
	Redirect string
	Message  string
}

// Predicate inspects the request and its session identity; a nil result lets
// the request through.
type Predicate func(r *http.Request, identity *models.Identity) *Denial

func Authenticated() Predicate {
	return func(_ *http.Request, identity *models.Identity) *Denial {
		if identity == nil {
			return &Denial{Redirect: loginPath, Message: "Please log in to access this page"}
		}
		return nil
	}
}

func HasRole(role models.Role) Predicate {
	return func(_ *http.Request, identity *models.Identity) *Denial {
		if identity == nil || identity.Role != role {
			return &Denial{Redirect: homePath, Message: "Access denied"}
		}
		return nil
	}
}

// AgentNotBlocked checks the stored agent record rather than the session copy,
// which may predate a block.
func AgentNotBlocked(users store.UserStore) Predicate {
	return func(r *http.Request, identity *models.Identity) *Denial {
		if identity == nil {
			return &Denial{Redirect: loginPath, Message: "Please log in to access this page"}
		}
		id, err := primitive.ObjectIDFromHex(identity.ID)
		if err != nil {
			return &Denial{Redirect: agentDashboardPath, Message: "Error checking account status"}
		}
		agent, err := users.FindUserByID(r.Context(), id)
		if err != nil {
			log.Printf("Blocked check failed for agent %s: %v", identity.ID, err)
			return &Denial{Redirect: agentDashboardPath, Message: "Error checking account status"}
		}
		if agent.IsBlocked {
			return &Denial{Redirect: agentDashboardPath, Message: "Your account is blocked due to unpaid commissions"}
		}
		return nil
	}
}

// Require runs the predicates in order before the handler. The first denial
// redirects with a flash message and the handler is never reached.
func Require(predicates ...Predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := IdentityFrom(r.Context())
			for _, check := range predicates {
				if denial := check(r, identity); denial != nil {
					log.Printf("Guard denied %s %s: %s", r.Method, r.URL.Path, denial.Message)
					utils.Redirect(w, r, denial.Redirect, utils.FlashError, denial.Message)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Roles bundles the usual authenticated plus role check.
func Roles(role models.Role, extra ...Predicate) func(http.Handler) http.Handler {
	return Require(append([]Predicate{Authenticated(), HasRole(role)}, extra...)...)
}
