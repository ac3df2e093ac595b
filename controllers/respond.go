package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dcode-github/homlet/middleware"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/services"
	"github.com/dcode-github/homlet/utils"
)

// Deps wires the domain services into the handlers.
type Deps struct {
	Accounts   *services.Accounts
	Ledger     *services.Ledger
	Ratings    *services.RatingAggregator
	Listings   *services.Listings
	Properties *services.Properties
	Admin      *services.Admin
	Sessions   *utils.SessionSigner
	Uploads    *UploadStore
	// DevMode appends the underlying error to user-facing messages.
	DevMode bool
}

// Page is the result value handed to the view layer.
type Page struct {
	Title string           `json:"title"`
	User  *models.Identity `json:"user"`
	Flash *utils.Flash     `json:"flash,omitempty"`
	Data  interface{}      `json:"data,omitempty"`
}

func render(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	identity, _ := middleware.IdentityFrom(r.Context())
	page := Page{
		Title: title,
		User:  identity,
		Flash: utils.PopFlash(w, r),
		Data:  data,
	}
	writeJSON(w, http.StatusOK, page)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// message picks the text shown to the user for err: the domain message when
// there is one, the fallback otherwise.
func (d *Deps) message(err error, fallback string) string {
	msg := fallback
	var appErr *models.Error
	if errors.As(err, &appErr) && !errors.Is(appErr.Kind, models.ErrUnavailable) {
		msg = appErr.Message
	}
	if d.DevMode {
		msg += " (" + err.Error() + ")"
	}
	return msg
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and redirects back with a flash message.
func (d *Deps) fail(w http.ResponseWriter, r *http.Request, to string, err error, fallback string) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	utils.Redirect(w, r, to, utils.FlashError, d.message(err, fallback))
}

func succeed(w http.ResponseWriter, r *http.Request, to, message string) {
	utils.Redirect(w, r, to, utils.FlashSuccess, message)
}

func currentIdentity(r *http.Request) *models.Identity {
	identity, _ := middleware.IdentityFrom(r.Context())
	return identity
}
