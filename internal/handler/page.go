package handler

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accel-dashboard-go/internal/middleware"
	"github.com/jengzang/accel-dashboard-go/internal/models"
	"github.com/jengzang/accel-dashboard-go/internal/session"
)

// Flash categories, rendered as alert styles
const (
	flashDanger  = "danger"
	flashInfo    = "info"
	flashSuccess = "success"
)

// page is the data every HTML template receives
type page struct {
	Title   string
	User    string
	Flashes []session.FlashMessage

	// login and register forms
	Username string
	Email    string

	// dashboard
	Datasets       []models.RawDataset
	Selected       models.RawDataset
	Metrics        models.ActivityMetrics
	XYZChart       template.JS
	MagnitudeChart template.JS
}

func render(c *gin.Context, sessions *session.Manager, status int, name string, p page) {
	p.Flashes = sessions.Flashes(c)
	if p.User == "" {
		if user := c.GetString(middleware.UsernameKey); user != "" {
			p.User = user
		} else if claims, ok := sessions.Current(c); ok {
			p.User = claims.Username
		}
	}
	c.HTML(status, name, p)
}
