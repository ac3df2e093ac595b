package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dcode-github/homlet/models"
)

type contactRequest struct {
	AgentID    string `json:"agentId"`
	PropertyID string `json:"propertyId"`
}

// ContactAgent records the client's contact request and answers with the
// unlocked agent phone number.
func ContactAgent(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := currentIdentity(r)

		var req contactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Invalid contact request body: %v", err)
			writeJSON(w, http.StatusBadRequest, models.ContactResponse{Error: "Invalid request data"})
			return
		}

		contact, err := d.Ledger.RequestContact(r.Context(), identity.ID, req.AgentID, req.PropertyID)
		if err != nil {
			log.Printf("Contact agent error: %v", err)
			writeJSON(w, statusFor(err), models.ContactResponse{
				Error: d.message(err, "Failed to send contact request"),
			})
			return
		}

		writeJSON(w, http.StatusOK, models.ContactResponse{
			Success:    true,
			Message:    "Contact request sent successfully!",
			AgentPhone: contact.AgentPhone,
		})
	}
}
