package controllers

import (
	"log"
	"net/http"

	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/services"
	"github.com/gorilla/mux"
)

func Home(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		featured, err := d.Listings.Featured(r.Context())
		if err != nil {
			log.Printf("Error loading home page: %v", err)
		}
		render(w, r, "HomLet - Find Your Perfect Home", map[string]interface{}{
			"featuredProperties": featured,
		})
	}
}

// Browse serves a filtered listing page. onError is where a failed lookup
// sends the user back to.
func Browse(d *Deps, title, onError string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := d.Listings.Browse(r.Context(), r.URL.Query())
		if err != nil {
			d.fail(w, r, onError, err, "Error loading properties")
			return
		}
		render(w, r, title, listing)
	}
}

func PropertyDetail(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := d.Listings.Detail(r.Context(), mux.Vars(r)["id"], currentIdentity(r))
		if err != nil {
			d.fail(w, r, "/houses", err, "Error loading property")
			return
		}
		render(w, r, detail.Property.Title, detail)
	}
}

func ClientDashboard(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := currentIdentity(r)
		listing, err := d.Listings.Browse(r.Context(), r.URL.Query())
		if err != nil {
			d.fail(w, r, "/", err, "Error loading dashboard")
			return
		}
		client, err := d.Accounts.Find(r.Context(), identity.ID)
		if err != nil {
			d.fail(w, r, "/", err, "Error loading dashboard")
			return
		}
		render(w, r, "Client Dashboard", struct {
			*services.Listing
			Client *models.User `json:"client"`
		}{listing, client})
	}
}
