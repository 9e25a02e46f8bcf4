package auth

import (
	"net/http"
	"time"
)

type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
}

var cookieSettings = CookieSettings{Name: "token", Secure: true}

func InitCookies(settings CookieSettings) {
	if settings.Name == "" {
		settings.Name = "token"
	}
	cookieSettings = settings
}

func CookieName() string {
	return cookieSettings.Name
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSettings.Name,
		Value:    token,
		Path:     "/",
		Domain:   cookieSettings.Domain,
		MaxAge:   int(tokenTTL / time.Second),
		Secure:   cookieSettings.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSettings.Name,
		Value:    "",
		Path:     "/",
		Domain:   cookieSettings.Domain,
		MaxAge:   -1,
		Secure:   cookieSettings.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
