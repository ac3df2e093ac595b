package routes

import (
	"net/http"

	"github.com/dcode-github/homlet/controllers"
	"github.com/dcode-github/homlet/middleware"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/store"
	"github.com/gorilla/mux"
)

func Routes(router *mux.Router, d *controllers.Deps, users store.UserStore) {
	router.Use(middleware.RequestLogger)
	router.Use(middleware.Session(d.Sessions))

	// Public pages
	router.HandleFunc("/", controllers.Home(d)).Methods("GET")
	router.HandleFunc("/houses", controllers.Browse(d, "Browse Properties", "/")).Methods("GET")
	router.HandleFunc("/property/{id}", controllers.PropertyDetail(d)).Methods("GET")
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Uploads.Dir)))).Methods("GET")

	// Auth routes
	router.HandleFunc("/auth/login", controllers.LoginPage()).Methods("GET")
	router.HandleFunc("/auth/client-login", controllers.LoginPage()).Methods("GET")
	router.HandleFunc("/auth/agent-login", controllers.LoginPage()).Methods("GET")
	router.HandleFunc("/admin/login", controllers.LoginPage()).Methods("GET")
	router.HandleFunc("/auth/client-register", controllers.RegisterPage(models.RoleClient)).Methods("GET")
	router.HandleFunc("/auth/agent-register", controllers.RegisterPage(models.RoleAgent)).Methods("GET")
	router.HandleFunc("/auth/client-login", controllers.Login(d, models.RoleClient)).Methods("POST")
	router.HandleFunc("/auth/agent-login", controllers.Login(d, models.RoleAgent)).Methods("POST")
	router.HandleFunc("/admin/login", controllers.Login(d, models.RoleAdmin)).Methods("POST")
	router.HandleFunc("/auth/client-register", controllers.Register(d, models.RoleClient)).Methods("POST")
	router.HandleFunc("/auth/agent-register", controllers.Register(d, models.RoleAgent)).Methods("POST")
	router.HandleFunc("/auth/logout", controllers.Logout()).Methods("POST")

	// Client routes
	client := router.PathPrefix("/client").Subrouter()
	client.Use(middleware.Roles(models.RoleClient))
	client.HandleFunc("/dashboard", controllers.ClientDashboard(d)).Methods("GET")
	client.HandleFunc("/contact-agent", controllers.ContactAgent(d)).Methods("POST")
	client.HandleFunc("/rate/{agentId}", controllers.RatePage(d)).Methods("GET")
	client.HandleFunc("/rate/{agentId}", controllers.SubmitRating(d)).Methods("POST")

	// Agent routes
	agent := router.PathPrefix("/agent").Subrouter()
	agent.Use(middleware.Roles(models.RoleAgent))
	agent.HandleFunc("/dashboard", controllers.AgentDashboard(d)).Methods("GET")
	agent.HandleFunc("/edit/{id}", controllers.EditPropertyPage(d)).Methods("GET")
	agent.HandleFunc("/edit/{id}", controllers.UpdateProperty(d)).Methods("POST")
	agent.HandleFunc("/delete/{id}", controllers.DeleteProperty(d)).Methods("POST", "DELETE")
	agent.HandleFunc("/deals", controllers.RecordDeal(d)).Methods("POST")

	notBlocked := middleware.Require(middleware.AgentNotBlocked(users))
	agent.Handle("/upload", notBlocked(controllers.UploadPage())).Methods("GET")
	agent.Handle("/upload", notBlocked(controllers.UploadProperty(d))).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Roles(models.RoleAdmin))
	admin.HandleFunc("/dashboard", controllers.AdminDashboard(d)).Methods("GET")
	admin.HandleFunc("/clients", controllers.AdminUsers(d, models.RoleClient, "Manage Clients")).Methods("GET")
	admin.HandleFunc("/agents", controllers.AdminUsers(d, models.RoleAgent, "Manage Agents")).Methods("GET")
	admin.HandleFunc("/properties", controllers.AdminProperties(d)).Methods("GET")
	admin.HandleFunc("/deals", controllers.AdminDeals(d)).Methods("GET")
	admin.HandleFunc("/contacts", controllers.AdminContacts(d)).Methods("GET")
	admin.HandleFunc("/toggle-agent/{id}", controllers.ToggleAgent(d)).Methods("POST")
	admin.HandleFunc("/close-deal/{id}", controllers.CloseDeal(d)).Methods("POST")
	admin.HandleFunc("/flag-deal/{id}", controllers.FlagDeal(d)).Methods("POST")
	admin.HandleFunc("/update-contact/{id}", controllers.UpdateContactStatus(d)).Methods("POST")
}
