package controllers

import (
	"errors"
	"net/http"

	"github.com/dcode-github/homlet/middleware"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/services"
)

var dashboards = map[models.Role]string{
	models.RoleClient: "/client/dashboard",
	models.RoleAgent:  "/agent/dashboard",
	models.RoleAdmin:  "/admin/dashboard",
}

var loginPages = map[models.Role]string{
	models.RoleClient: "/auth/client-login",
	models.RoleAgent:  "/auth/agent-login",
	models.RoleAdmin:  "/admin/login",
}

func LoginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, "Login", loginPages)
	}
}

func RegisterPage(role models.Role) http.HandlerFunc {
	title := "Client Registration"
	if role == models.RoleAgent {
		title = "Agent Registration"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, title, map[string]models.Role{"role": role})
	}
}

// Login authenticates an account of the given role and starts its session.
func Login(d *Deps, role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := d.Accounts.Login(r.Context(), r.FormValue("email"), r.FormValue("password"), role)
		if err != nil {
			d.fail(w, r, loginPages[role], err, "Login failed")
			return
		}
		if err := middleware.StartSession(w, d.Sessions, user.Identity()); err != nil {
			d.fail(w, r, loginPages[role], err, "Login failed")
			return
		}
		succeed(w, r, dashboards[role], "Welcome back, "+user.FullName)
	}
}

func Register(d *Deps, role models.Role) http.HandlerFunc {
	registerPage := "/auth/" + string(role) + "-register"
	return func(w http.ResponseWriter, r *http.Request) {
		var picture []string
		if role == models.RoleAgent {
			var err error
			if picture, err = saveProfilePicture(d, r); err != nil {
				d.fail(w, r, registerPage, err, "Registration failed")
				return
			}
		}

		in := services.RegisterInput{
			FullName:   r.FormValue("fullName"),
			Email:      r.FormValue("email"),
			Phone:      r.FormValue("phone"),
			Password:   r.FormValue("password"),
			Commission: r.FormValue("commission"),
			Bio:        r.FormValue("bio"),
		}
		if len(picture) == 1 {
			in.ProfilePicture = picture[0]
		}

		var (
			user *models.User
			err  error
		)
		if role == models.RoleAgent {
			user, err = d.Accounts.RegisterAgent(r.Context(), in)
		} else {
			user, err = d.Accounts.RegisterClient(r.Context(), in)
		}
		if err != nil {
			d.Uploads.Remove(picture)
			d.fail(w, r, registerPage, err, "Registration failed")
			return
		}

		if err := middleware.StartSession(w, d.Sessions, user.Identity()); err != nil {
			d.fail(w, r, registerPage, err, "Registration failed")
			return
		}
		succeed(w, r, dashboards[role], "Registration successful!")
	}
}

// saveProfilePicture stores the optional profilePicture file of an agent
// registration form. Plain urlencoded forms carry no picture.
func saveProfilePicture(d *Deps, r *http.Request) ([]string, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	files := r.MultipartForm.File["profilePicture"]
	if len(files) == 0 {
		return nil, nil
	}
	return d.Uploads.Save(files[:1])
}

func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.ClearSession(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
