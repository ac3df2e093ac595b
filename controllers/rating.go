package controllers

import (
	"net/http"

	"github.com/dcode-github/homlet/services"
	"github.com/gorilla/mux"
)

func RatePage(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := d.Ratings.RatePage(r.Context(), currentIdentity(r).ID, mux.Vars(r)["agentId"])
		if err != nil {
			d.fail(w, r, "/client/dashboard", err, "Error loading rating page")
			return
		}
		render(w, r, "Rate Agent", page)
	}
}

func SubmitRating(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID := mux.Vars(r)["agentId"]

		rating, err := services.ParseRating(r.FormValue("rating"))
		if err != nil {
			d.fail(w, r, "/client/rate/"+agentID, err, "Please provide a valid rating (1-5)")
			return
		}

		_, err = d.Ratings.SubmitRating(r.Context(), services.RatingInput{
			ClientID:   currentIdentity(r).ID,
			AgentID:    agentID,
			PropertyID: r.FormValue("propertyId"),
			Rating:     rating,
			Comment:    r.FormValue("comment"),
		})
		if err != nil {
			d.fail(w, r, "/client/dashboard", err, "Error submitting rating")
			return
		}
		succeed(w, r, "/client/dashboard", "Rating submitted successfully!")
	}
}
