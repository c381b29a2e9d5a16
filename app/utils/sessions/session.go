package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "glow-admin-session"

	adminIDSessionKey = "adminID"
	roleSessionKey    = "role"
)

type SessionStore interface {
	GetAdmin(r *http.Request) (adminID, role string)
	SetAdmin(w http.ResponseWriter, r *http.Request, adminID, role string) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(12 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		// a tampered or stale cookie still yields a fresh session
		log.Printf("Sessions.getSession: %v", err)
	}
	return session
}

func (c *CookieSessionStore) GetAdmin(r *http.Request) (string, string) {
	session := c.getSession(r)
	if session == nil {
		return "", ""
	}
	adminID, _ := session.Values[adminIDSessionKey].(string)
	role, _ := session.Values[roleSessionKey].(string)
	return adminID, role
}

func (c *CookieSessionStore) SetAdmin(w http.ResponseWriter, r *http.Request, adminID, role string) error {
	session := c.getSession(r)
	session.Values[adminIDSessionKey] = adminID
	session.Values[roleSessionKey] = role
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
