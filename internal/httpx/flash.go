package httpx

import (
	"net/http"
	"net/url"
)

const (
	flashSuccessCookie = "flash_success"
	flashErrorCookie   = "flash_error"
)

// Flash carries a one-shot message across a redirect.
type Flash struct {
	Success string
	Error   string
}

// RedirectSuccess sets a success flash cookie and redirects.
func RedirectSuccess(w http.ResponseWriter, r *http.Request, target, msg string) {
	setFlash(w, flashSuccessCookie, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RedirectError sets an error flash cookie and redirects.
func RedirectError(w http.ResponseWriter, r *http.Request, target, msg string) {
	setFlash(w, flashErrorCookie, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// PopFlash reads and clears any pending flash message.
func PopFlash(w http.ResponseWriter, r *http.Request) Flash {
	return Flash{
		Success: popCookie(w, r, flashSuccessCookie),
		Error:   popCookie(w, r, flashErrorCookie),
	}
}

func setFlash(w http.ResponseWriter, name, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popCookie(w http.ResponseWriter, r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return v
}
