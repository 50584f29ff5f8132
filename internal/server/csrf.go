package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	csrfCookie    = "csrftoken"
	csrfFormField = "csrfmiddlewaretoken"
	csrfHeader    = "X-CSRFToken"
)

// issueCSRF hands out the anti-forgery cookie, keeping an existing one.
func issueCSRF(c *gin.Context) {
	token, err := c.Cookie(csrfCookie)
	if err != nil || token == "" {
		token = uuid.NewString()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(csrfCookie, token, 365*24*3600, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requireCSRF rejects POSTs whose form field or header token does not match
// the cookie.
func requireCSRF(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Next()
		return
	}
	cookie, err := c.Cookie(csrfCookie)
	if err != nil || cookie == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF cookie not set"})
		return
	}
	sent := c.GetHeader(csrfHeader)
	if sent == "" {
		sent = c.PostForm(csrfFormField)
	}
	if subtle.ConstantTimeCompare([]byte(sent), []byte(cookie)) != 1 {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token missing or incorrect"})
		return
	}
	c.Next()
}
