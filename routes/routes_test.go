package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dcode-github/homlet/cache"
	"github.com/dcode-github/homlet/controllers"
	"github.com/dcode-github/homlet/locks"
	"github.com/dcode-github/homlet/middleware"
	"github.com/dcode-github/homlet/models"
	"github.com/dcode-github/homlet/services"
	"github.com/dcode-github/homlet/store"
	"github.com/dcode-github/homlet/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	store    *store.MemoryStore
	sessions *utils.SessionSigner
	uploads  *controllers.UploadStore
	router   *mux.Router
}

func newApp(t *testing.T) *app {
	t.Helper()
	s := store.NewMemoryStore()
	uploads, err := controllers.NewUploadStore(t.TempDir())
	require.NoError(t, err)

	ledger := services.NewLedger(s)
	a := &app{
		store:    s,
		sessions: utils.NewSessionSigner("routes-test", time.Hour),
		uploads:  uploads,
		router:   mux.NewRouter(),
	}
	Routes(a.router, &controllers.Deps{
		Accounts:   services.NewAccounts(s),
		Ledger:     ledger,
		Ratings:    services.NewRatingAggregator(s, ledger, locks.NewLocalLocker()),
		Listings:   services.NewListings(s, cache.Nop{}, ledger),
		Properties: services.NewProperties(s, cache.Nop{}),
		Admin:      services.NewAdmin(s),
		Sessions:   a.sessions,
		Uploads:    uploads,
	}, s)
	return a
}

func (a *app) user(t *testing.T, role models.Role, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: email, Email: email, Phone: "+234-802-" + email[:3], Role: role}
	require.NoError(t, a.store.CreateUser(context.Background(), u))
	return u
}

func (a *app) listing(t *testing.T, agent *models.User) *models.Property {
	t.Helper()
	p := &models.Property{
		AgentID:      agent.ID,
		Title:        "Bungalow",
		Description:  "Three bedroom bungalow",
		Price:        1200,
		Location:     models.Location{State: "Lagos", Area: "Gbagada"},
		PropertyType: models.PropertyRent,
		Images:       []string{"1", "2", "3", "4", "5"},
		Status:       models.StatusActive,
	}
	require.NoError(t, a.store.CreateProperty(context.Background(), p))
	return p
}

// do sends req, logged in as u when u is non-nil.
func (a *app) do(t *testing.T, req *http.Request, u *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if u != nil {
		token, err := a.sessions.Generate(u.Identity())
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func flashOf(rec *httptest.ResponseRecorder) *utils.Flash {
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return utils.PopFlash(httptest.NewRecorder(), next)
}

func uploadRequest(t *testing.T, images int) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range map[string]string{
		"title":        "Terrace",
		"description":  "Four bedroom terrace",
		"price":        "4500000",
		"state":        "Lagos",
		"area":         "Magodo",
		"propertyType": "buy",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < images; i++ {
		part, err := mw.CreateFormFile("images", fmt.Sprintf("photo%d.JPG", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/agent/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (a *app) propertyCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.store.CountProperties(context.Background())
	require.NoError(t, err)
	return n
}

func TestUploadRequiresAgentSession(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, uploadRequest(t, 5), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.EqualValues(t, 0, a.propertyCount(t))

	client := a.user(t, models.RoleClient, "client@example.com")
	rec = a.do(t, uploadRequest(t, 5), client)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.EqualValues(t, 0, a.propertyCount(t))
}

func TestAdminActionsRequireAdminSession(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	agent := a.user(t, models.RoleAgent, "agent@example.com")
	client := a.user(t, models.RoleClient, "client@example.com")
	p := a.listing(t, agent)

	contact, err := services.NewLedger(a.store).RequestContact(ctx, client.ID.Hex(), agent.ID.Hex(), p.ID.Hex())
	require.NoError(t, err)

	for _, caller := range []*models.User{nil, client, agent} {
		form := url.Values{"status": {"closed"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/update-contact/"+contact.ID.Hex(), strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := a.do(t, req, caller)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.NotEqual(t, "/admin/contacts", rec.Header().Get("Location"))

		rec = a.do(t, httptest.NewRequest(http.MethodPost, "/admin/toggle-agent/"+agent.ID.Hex(), nil), caller)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.NotEqual(t, "/admin/agents", rec.Header().Get("Location"))
	}

	contacts, err := a.store.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, models.ContactPending, contacts[0].Status)

	stored, err := a.store.FindUserByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBlocked)

	admin := a.user(t, models.RoleAdmin, "admin@example.com")
	rec := a.do(t, httptest.NewRequest(http.MethodPost, "/admin/toggle-agent/"+agent.ID.Hex(), nil), admin)
	assert.Equal(t, "/admin/agents", rec.Header().Get("Location"))
	stored, err = a.store.FindUserByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBlocked)
}

func TestUploadByAgent(t *testing.T) {
	a := newApp(t)
	agent := a.user(t, models.RoleAgent, "agent@example.com")

	rec := a.do(t, uploadRequest(t, 4), agent)
	assert.Equal(t, "/agent/upload", rec.Header().Get("Location"))
	assert.Equal(t, "Please upload exactly 5 images", flashOf(rec).Message)
	assert.EqualValues(t, 0, a.propertyCount(t))

	rec = a.do(t, uploadRequest(t, 5), agent)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/agent/dashboard", rec.Header().Get("Location"))
	require.EqualValues(t, 1, a.propertyCount(t))

	list, err := a.store.ListProperties(context.Background(), models.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, list[0].Images, 5)
	for _, name := range list[0].Images {
		assert.True(t, strings.HasSuffix(name, ".jpg"))
		_, err := os.Stat(a.uploads.Dir + "/" + name)
		assert.NoError(t, err)
	}
}

func TestUploadByBlockedAgent(t *testing.T) {
	a := newApp(t)
	agent := a.user(t, models.RoleAgent, "agent@example.com")
	_, err := a.store.ToggleAgentBlocked(context.Background(), agent.ID)
	require.NoError(t, err)

	rec := a.do(t, uploadRequest(t, 5), agent)
	assert.Equal(t, "/agent/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, "Your account is blocked due to unpaid commissions", flashOf(rec).Message)
	assert.EqualValues(t, 0, a.propertyCount(t))

	entries, err := os.ReadDir(a.uploads.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func contactRequest(agent *models.User, p *models.Property) *http.Request {
	body := fmt.Sprintf(`{"agentId":%q,"propertyId":%q}`, agent.ID.Hex(), p.ID.Hex())
	req := httptest.NewRequest(http.MethodPost, "/client/contact-agent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestContactAgentEndpoint(t *testing.T) {
	a := newApp(t)
	agent := a.user(t, models.RoleAgent, "agent@example.com")
	client := a.user(t, models.RoleClient, "client@example.com")
	p := a.listing(t, agent)

	rec := a.do(t, contactRequest(agent, p), client)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.ContactResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Equal(t, agent.Phone, res.AgentPhone)

	rec = a.do(t, contactRequest(agent, p), client)
	assert.Equal(t, http.StatusConflict, rec.Code)
	res = models.ContactResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.False(t, res.Success)
	assert.Equal(t, "You have already contacted this agent for this property", res.Error)

	bad := httptest.NewRequest(http.MethodPost, "/client/contact-agent", strings.NewReader("{"))
	rec = a.do(t, bad, client)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPropertyDetailShowsPhoneAfterContact(t *testing.T) {
	a := newApp(t)
	agent := a.user(t, models.RoleAgent, "agent@example.com")
	client := a.user(t, models.RoleClient, "client@example.com")
	p := a.listing(t, agent)

	detail := func() services.PropertyDetail {
		rec := a.do(t, httptest.NewRequest(http.MethodGet, "/property/"+p.ID.Hex(), nil), client)
		require.Equal(t, http.StatusOK, rec.Code)
		var page struct {
			Data services.PropertyDetail `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
		return page.Data
	}

	assert.Empty(t, detail().Agent.Phone)
	require.Equal(t, http.StatusOK, a.do(t, contactRequest(agent, p), client).Code)
	got := detail()
	assert.True(t, got.HasUnlocked)
	assert.Equal(t, agent.Phone, got.Agent.Phone)
}

func TestSubmitRatingFlow(t *testing.T) {
	a := newApp(t)
	agent := a.user(t, models.RoleAgent, "agent@example.com")
	client := a.user(t, models.RoleClient, "client@example.com")
	p := a.listing(t, agent)

	rate := func(value string) *httptest.ResponseRecorder {
		form := url.Values{"rating": {value}, "propertyId": {p.ID.Hex()}, "comment": {"Helpful"}}
		req := httptest.NewRequest(http.MethodPost, "/client/rate/"+agent.ID.Hex(), strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return a.do(t, req, client)
	}

	rec := rate("4")
	assert.Equal(t, "/client/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, "You can only rate agents you have contacted", flashOf(rec).Message)

	require.Equal(t, http.StatusOK, a.do(t, contactRequest(agent, p), client).Code)

	rec = rate("9")
	assert.Equal(t, "/client/rate/"+agent.ID.Hex(), rec.Header().Get("Location"))
	assert.Equal(t, utils.FlashError, flashOf(rec).Kind)

	rec = rate("4")
	assert.Equal(t, "/client/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, utils.FlashSuccess, flashOf(rec).Kind)

	stored, err := a.store.FindUserByID(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stored.Rating)
	assert.Equal(t, 1, stored.TotalRatings)
}

func TestLoginStartsSession(t *testing.T) {
	a := newApp(t)
	form := url.Values{
		"fullName": {"Ada Obi"},
		"email":    {"ada@example.com"},
		"phone":    {"+234-803-0000"},
		"password": {"secret1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/client-register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := a.do(t, req, nil)
	assert.Equal(t, "/client/dashboard", rec.Header().Get("Location"))

	login := url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}
	req = httptest.NewRequest(http.MethodPost, "/auth/agent-login", strings.NewReader(login.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = a.do(t, req, nil)
	assert.Equal(t, "/auth/agent-login", rec.Header().Get("Location"))
	assert.Equal(t, "Invalid credentials", flashOf(rec).Message)

	req = httptest.NewRequest(http.MethodPost, "/auth/client-login", strings.NewReader(login.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = a.do(t, req, nil)
	assert.Equal(t, "/client/dashboard", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	identity, err := a.sessions.Validate(session.Value)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, identity.Role)
}

func TestAgentRegistrationStoresProfilePicture(t *testing.T) {
	a := newApp(t)
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range map[string]string{
		"fullName":   "Tunde Bello",
		"email":      "tunde@example.com",
		"phone":      "+234-805-1111",
		"password":   "secret1",
		"commission": "7.5",
		"bio":        "Lekki specialist",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("profilePicture", "me.PNG")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/agent-register", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := a.do(t, req, nil)
	assert.Equal(t, "/agent/dashboard", rec.Header().Get("Location"))

	agent, err := a.store.FindUserByEmail(context.Background(), "tunde@example.com")
	require.NoError(t, err)
	assert.Equal(t, 7.5, agent.Commission)
	assert.True(t, strings.HasSuffix(agent.ProfilePicture, ".png"))
	_, err = os.Stat(a.uploads.Dir + "/" + agent.ProfilePicture)
	assert.NoError(t, err)
}

func TestFailedAgentRegistrationRemovesPicture(t *testing.T) {
	a := newApp(t)
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("fullName", "Tunde Bello"))
	require.NoError(t, mw.WriteField("email", "tunde@example.com"))
	require.NoError(t, mw.WriteField("phone", "+234-805-1111"))
	require.NoError(t, mw.WriteField("password", "secret1"))
	require.NoError(t, mw.WriteField("commission", "150"))
	part, err := mw.CreateFormFile("profilePicture", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/agent-register", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := a.do(t, req, nil)
	assert.Equal(t, "/auth/agent-register", rec.Header().Get("Location"))

	entries, err := os.ReadDir(a.uploads.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
