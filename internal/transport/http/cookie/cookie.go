package cookie

import (
	"net/http"
	"time"

	"github.com/pixshelf/pixshelf-api/internal/config"
)

// Session cookie names.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Cookie lifetimes. The access cookie outlives neither the browser tab
// nor 15 minutes even though the token inside stays signed-valid for 30;
// both values are deliberate and must not be reconciled.
const (
	accessMaxAge  = 15 * time.Minute
	refreshMaxAge = 7 * 24 * time.Hour
)

// Manager attaches and clears the session cookie pair with one shared
// attribute profile. Clearing with a different profile than setting is a
// silent no-op in browsers, so both operations go through the same
// newCookie helper.
type Manager struct {
	secure   bool
	sameSite http.SameSite
	domain   string
}

func NewManager(cfg *config.Config) *Manager {
	m := &Manager{sameSite: http.SameSiteLaxMode}
	if cfg.IsProduction() {
		m.secure = true
		m.sameSite = http.SameSiteNoneMode
		m.domain = cfg.CookieDomain
	}
	return m
}

// SetSession attaches both session cookies after a successful
// verify-code or signin.
func (m *Manager) SetSession(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, m.newCookie(RefreshCookie, refreshToken, int(refreshMaxAge.Seconds())))
	http.SetCookie(w, m.newCookie(AccessCookie, accessToken, int(accessMaxAge.Seconds())))
}

// SetAccess refreshes only the access cookie (the refresh flow).
func (m *Manager) SetAccess(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, m.newCookie(AccessCookie, accessToken, int(accessMaxAge.Seconds())))
}

// Clear expires both session cookies using the identical attribute
// profile they were set with.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.newCookie(AccessCookie, "", -1))
	http.SetCookie(w, m.newCookie(RefreshCookie, "", -1))
}

func (m *Manager) newCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	}
}
