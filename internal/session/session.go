// Package session keeps the signed-in user's upstream bearer token and flash
// messages in signed cookies.
package session

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the session cookie
	CookieName = "session"
	// FlashCookieName carries flash messages across a redirect
	FlashCookieName = "flash"

	flashTTL        = 5 * time.Minute
	claimsKey       = "session.claims"
	pendingFlashKey = "session.flashes"
)

// ErrInvalidSession is returned for a missing, expired or tampered session cookie
var ErrInvalidSession = errors.New("invalid session")

// Claims is the decoded session
type Claims struct {
	ID        string
	Username  string
	Token     string // upstream bearer token
	ExpiresAt time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SealedToken string `json:"tok"`
}

// FlashMessage is a one-shot message shown on the next rendered page
type FlashMessage struct {
	Category string `json:"category"` // success, info, warning, danger
	Message  string `json:"message"`
}

type flashClaims struct {
	jwt.RegisteredClaims
	Messages []FlashMessage `json:"msgs"`
}

// Manager issues and reads session cookies
type Manager struct {
	secret []byte
	key    []byte
	ttl    time.Duration
	secure bool
	sign   func(jwt.Claims) (string, error)
}

// NewManager creates a session manager signing with secret
func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	m := &Manager{
		secret: []byte(secret),
		key:    deriveKey([]byte(secret)),
		ttl:    ttl,
		secure: secure,
	}
	m.sign = m.signHS256
	return m
}

func (m *Manager) signHS256(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Encode builds a signed session value for the user and upstream token
func (m *Manager) Encode(username, token string, now time.Time) (string, error) {
	sealed, err := seal(token, m.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal token: %w", err)
	}

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		SealedToken: sealed,
	}
	return m.sign(claims)
}

// Decode validates a session value and recovers its claims
func (m *Manager) Decode(value string) (*Claims, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrInvalidSession
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(value, &claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	token, err := open(claims.SealedToken, m.key)
	if err != nil || token == "" {
		return nil, fmt.Errorf("%w: token unreadable", ErrInvalidSession)
	}

	return &Claims{
		ID:        claims.ID,
		Username:  claims.Subject,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return m.secret, nil
}

// Issue starts a session for the user
func (m *Manager) Issue(c *gin.Context, username, token string) error {
	value, err := m.Encode(username, token, time.Now())
	if err != nil {
		return err
	}
	m.setCookie(c, CookieName, value, int(m.ttl.Seconds()))

	claims, err := m.Decode(value)
	if err != nil {
		return err
	}
	c.Set(claimsKey, claims)
	return nil
}

// Current returns the session of the request, if any
func (m *Manager) Current(c *gin.Context) (*Claims, bool) {
	if v, ok := c.Get(claimsKey); ok {
		claims, ok := v.(*Claims)
		return claims, ok && claims != nil
	}

	value, err := c.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	claims, err := m.Decode(value)
	if err != nil {
		return nil, false
	}
	c.Set(claimsKey, claims)
	return claims, true
}

// Clear ends the session
func (m *Manager) Clear(c *gin.Context) {
	m.setCookie(c, CookieName, "", -1)
	c.Set(claimsKey, (*Claims)(nil))
}

// Flash queues a message for the next rendered page
func (m *Manager) Flash(c *gin.Context, category, message string) {
	messages := append([]FlashMessage(nil), m.pendingFlashes(c)...)
	messages = append(messages, FlashMessage{Category: category, Message: message})
	c.Set(pendingFlashKey, messages)

	now := time.Now()
	claims := flashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
		Messages: messages,
	}
	value, err := m.sign(claims)
	if err != nil {
		log.Printf("[Session] failed to sign flash cookie: %v", err)
		return
	}
	m.setCookie(c, FlashCookieName, value, int(flashTTL.Seconds()))
}

// Flashes returns and clears the queued messages
func (m *Manager) Flashes(c *gin.Context) []FlashMessage {
	messages := m.pendingFlashes(c)
	if len(messages) > 0 {
		m.setCookie(c, FlashCookieName, "", -1)
	}
	c.Set(pendingFlashKey, []FlashMessage{})
	return messages
}

func (m *Manager) pendingFlashes(c *gin.Context) []FlashMessage {
	if v, ok := c.Get(pendingFlashKey); ok {
		if messages, ok := v.([]FlashMessage); ok {
			return messages
		}
	}

	value, err := c.Cookie(FlashCookieName)
	if err != nil || value == "" {
		return nil
	}
	var claims flashClaims
	parsed, err := jwt.ParseWithClaims(value, &claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims.Messages
}

func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", m.secure, true)
}
