package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accel-dashboard-go/internal/healthapi"
	"github.com/jengzang/accel-dashboard-go/internal/session"
)

const minPasswordLength = 8

// Authenticator is the account side of the health API
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password, email string) (string, error)
}

// AuthHandler handles login, logout and registration pages
type AuthHandler struct {
	auth     Authenticator
	sessions *session.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// LoginPage renders the login form
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := h.sessions.Current(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, h.sessions, http.StatusOK, "login.html", page{Title: "Login"})
}

// Login exchanges credentials for an upstream token and starts a session
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		h.sessions.Flash(c, flashDanger, "Please enter your username and password")
		render(c, h.sessions, http.StatusOK, "login.html", page{Title: "Login", Username: username})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, healthapi.ErrInvalidCredentials) {
			log.Printf("[Auth] login for %s failed: %v", username, err)
		}
		h.sessions.Flash(c, flashDanger, err.Error())
		render(c, h.sessions, http.StatusOK, "login.html", page{Title: "Login", Username: username})
		return
	}

	if err := h.sessions.Issue(c, username, token); err != nil {
		log.Printf("[Auth] failed to issue session for %s: %v", username, err)
		h.sessions.Flash(c, flashDanger, "Could not start a session, please try again")
		render(c, h.sessions, http.StatusOK, "login.html", page{Title: "Login", Username: username})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout ends the session
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	h.sessions.Flash(c, flashInfo, "You have been logged out")
	c.Redirect(http.StatusFound, "/login")
}

// RegisterPage renders the registration form
// GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "register.html", page{Title: "Register"})
}

// Register creates an account and signs the new user in
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	form := page{Title: "Register", Username: username, Email: email}

	if username == "" || email == "" || password == "" {
		h.sessions.Flash(c, flashDanger, "All fields are required")
		render(c, h.sessions, http.StatusOK, "register.html", form)
		return
	}
	if len(password) < minPasswordLength {
		h.sessions.Flash(c, flashDanger, "Password must be at least 8 characters long")
		render(c, h.sessions, http.StatusOK, "register.html", form)
		return
	}

	message, err := h.auth.Register(c.Request.Context(), username, password, email)
	if err != nil {
		log.Printf("[Auth] registration for %s failed: %v", username, err)
		h.sessions.Flash(c, flashDanger, registrationFailure(err))
		render(c, h.sessions, http.StatusOK, "register.html", form)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), username, password)
	if err == nil {
		err = h.sessions.Issue(c, username, token)
	}
	if err != nil {
		log.Printf("[Auth] sign-in after registration for %s failed: %v", username, err)
		h.sessions.Flash(c, flashSuccess, message+". Please log in.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.sessions.Flash(c, flashSuccess, message)
	c.Redirect(http.StatusFound, "/")
}

func registrationFailure(err error) string {
	msg := err.Error()
	var apiErr *healthapi.APIError
	if errors.As(err, &apiErr) && strings.HasPrefix(msg, "Registration failed") {
		return msg
	}
	return "Registration failed: " + msg
}
