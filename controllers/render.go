package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"goblog/auth"
)

// render draws a template with the request's identity and any queued
// flash messages merged into the view data.
func render(c *gin.Context, sessions *auth.SessionManager, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := auth.UserFromContext(c); ok {
		data["CurrentUser"] = user
	}
	data["Flashes"] = sessions.Flashes(c)
	c.HTML(status, name, data)
}

func renderNotFound(c *gin.Context, sessions *auth.SessionManager) {
	render(c, sessions, http.StatusNotFound, "not_found.html", gin.H{
		"Title": "Blog | Not found",
	})
}

func renderAccessDenied(c *gin.Context, sessions *auth.SessionManager) {
	render(c, sessions, http.StatusForbidden, "access_denied.html", gin.H{
		"Title": "Access denied!",
	})
}

func renderInternalError(c *gin.Context, sessions *auth.SessionManager, logger *zap.Logger, err error) {
	logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	render(c, sessions, http.StatusInternalServerError, "error.html", gin.H{
		"Title": "Blog | Something went wrong",
	})
}

// parseID reads a numeric path parameter; false means it was not a number.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
