package controllers

import (
	"net/http"

	"github.com/dcode-github/homlet/models"
	"github.com/gorilla/mux"
)

func AdminDashboard(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Admin.Stats(r.Context())
		if err != nil {
			d.fail(w, r, "/", err, "Error loading dashboard")
			return
		}
		contacts, err := d.Ledger.List(r.Context())
		if err != nil {
			d.fail(w, r, "/", err, "Error loading dashboard")
			return
		}
		if len(contacts) > 10 {
			contacts = contacts[:10]
		}
		render(w, r, "Admin Dashboard", map[string]interface{}{
			"stats":          stats,
			"recentContacts": contacts,
		})
	}
}

func AdminUsers(d *Deps, role models.Role, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := d.Admin.Users(r.Context(), role)
		if err != nil {
			d.fail(w, r, "/admin/dashboard", err, "Error loading "+string(role)+"s")
			return
		}
		render(w, r, title, users)
	}
}

func AdminProperties(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := d.Admin.Properties(r.Context())
		if err != nil {
			d.fail(w, r, "/admin/dashboard", err, "Error loading properties")
			return
		}
		render(w, r, "Manage Properties", properties)
	}
}

func AdminDeals(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deals, err := d.Admin.Deals(r.Context())
		if err != nil {
			d.fail(w, r, "/admin/dashboard", err, "Error loading deals")
			return
		}
		render(w, r, "Manage Deals", deals)
	}
}

func AdminContacts(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := d.Ledger.List(r.Context())
		if err != nil {
			d.fail(w, r, "/admin/dashboard", err, "Error loading contacts")
			return
		}
		render(w, r, "Client-Agent Contacts", contacts)
	}
}

func ToggleAgent(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, err := d.Admin.ToggleAgentBlock(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			d.fail(w, r, "/admin/agents", err, "Error updating agent status")
			return
		}
		state := "unblocked"
		if agent.IsBlocked {
			state = "blocked"
		}
		succeed(w, r, "/admin/agents", "Agent "+state+" successfully")
	}
}

func CloseDeal(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Admin.CloseDeal(r.Context(), mux.Vars(r)["id"]); err != nil {
			d.fail(w, r, "/admin/deals", err, "Error closing deal")
			return
		}
		succeed(w, r, "/admin/deals", "Deal closed successfully")
	}
}

func FlagDeal(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Admin.FlagDeal(r.Context(), mux.Vars(r)["id"]); err != nil {
			d.fail(w, r, "/admin/deals", err, "Error flagging deal")
			return
		}
		succeed(w, r, "/admin/deals", "Deal flagged successfully")
	}
}

func UpdateContactStatus(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Ledger.UpdateStatus(r.Context(), mux.Vars(r)["id"], r.FormValue("status")); err != nil {
			d.fail(w, r, "/admin/contacts", err, "Error updating contact status")
			return
		}
		succeed(w, r, "/admin/contacts", "Contact status updated successfully")
	}
}
