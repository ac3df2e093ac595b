package utils

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "homlet_flash"

const (
	FlashSuccess = "success_msg"
	FlashError   = "error_msg"
)

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SetFlash stores a one-shot message for the next request.
func SetFlash(w http.ResponseWriter, kind, message string) {
	data, _ := json.Marshal(Flash{Kind: kind, Message: message})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending message, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

// Redirect sets a flash message and sends a See Other redirect.
func Redirect(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	SetFlash(w, kind, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
