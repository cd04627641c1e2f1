// Package auth owns the cookie session: login/logout, the request-scoped
// current user, one-shot flash messages and the signed remember-me token.
package auth

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"

	"goblog/models"
	"goblog/services"
)

const (
	sessionName    = "goblog_session"
	rememberCookie = "goblog_remember"
	rememberMaxAge = 30 * 24 * time.Hour

	// contextUserKey is where middleware stores the authenticated user.
	contextUserKey = "current_user"
)

// FlashMessage is a one-shot notice shown on the next rendered page.
type FlashMessage struct {
	Message  string
	Category string
}

func init() {
	gob.Register(FlashMessage{})
}

// RememberClaims represents the claims carried by the remember-me cookie.
type RememberClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager drives authentication state for every request.
type SessionManager struct {
	store       *sessions.CookieStore
	rememberKey []byte
	accounts    services.AccountService
}

func NewSessionManager(sessionSecret, rememberSecret []byte, accounts services.AccountService) *SessionManager {
	store := sessions.NewCookieStore(sessionSecret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // browser-session cookie; persistence comes from the remember token
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{
		store:       store,
		rememberKey: rememberSecret,
		accounts:    accounts,
	}
}

// Login establishes an authenticated session for the user. When remember
// is set a signed token cookie re-establishes the session after the
// browser-session cookie expires.
func (m *SessionManager) Login(c *gin.Context, user *models.User, remember bool) error {
	session, _ := m.store.Get(c.Request, sessionName)
	session.Values["user_id"] = user.ID
	if err := session.Save(c.Request, c.Writer); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	if remember {
		token, err := m.generateRememberToken(user)
		if err != nil {
			return err
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     rememberCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   int(rememberMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}

// Logout clears the session and the remember cookie.
func (m *SessionManager) Logout(c *gin.Context) {
	session, _ := m.store.Get(c.Request, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	_ = session.Save(c.Request, c.Writer)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:   rememberCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Flash queues a one-shot message for the next rendered page.
func (m *SessionManager) Flash(c *gin.Context, message, category string) {
	session, _ := m.store.Get(c.Request, sessionName)
	session.AddFlash(FlashMessage{Message: message, Category: category})
	_ = session.Save(c.Request, c.Writer)
}

// Flashes drains and returns the queued messages.
func (m *SessionManager) Flashes(c *gin.Context) []FlashMessage {
	session, _ := m.store.Get(c.Request, sessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save(c.Request, c.Writer)
	out := make([]FlashMessage, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(FlashMessage); ok {
			out = append(out, f)
		}
	}
	return out
}

// CurrentUser loads the authenticated user (if any) into the gin context
// so handlers receive an explicit request-scoped identity. A valid
// remember token re-establishes an expired session.
func (m *SessionManager) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := m.store.Get(c.Request, sessionName)
		if id, ok := session.Values["user_id"].(uint); ok {
			if user, err := m.accounts.GetByID(id); err == nil {
				c.Set(contextUserKey, user)
			}
			c.Next()
			return
		}

		if cookie, err := c.Request.Cookie(rememberCookie); err == nil {
			if claims, err := m.parseRememberToken(cookie.Value); err == nil {
				if user, err := m.accounts.GetByID(claims.UserID); err == nil {
					session.Values["user_id"] = user.ID
					_ = session.Save(c.Request, c.Writer)
					c.Set(contextUserKey, user)
				}
			}
		}
		c.Next()
	}
}

// RequireLogin redirects unauthenticated requests to the login page,
// deferring the original target through the next parameter.
func (m *SessionManager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			target := "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
		}
	}
}

// UserFromContext returns the request's authenticated user, if any.
func UserFromContext(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func (m *SessionManager) generateRememberToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &RememberClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(rememberMaxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "goblog",
			Subject:   "remember-me",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.rememberKey)
	if err != nil {
		return "", fmt.Errorf("signing remember token: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) parseRememberToken(tokenString string) (*RememberClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RememberClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.rememberKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*RememberClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid remember token")
	}
	return claims, nil
}
