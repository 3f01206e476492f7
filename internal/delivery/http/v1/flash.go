package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// Every handler outcome is surfaced the same way: a user-visible
// message in a short-lived cookie plus a redirect back to the
// originating view. The next page-model request pops the message.
// Cookie values are escaped and unescaped by gin.

func setFlash(c *gin.Context, message string) {
	const maxAge = 60
	c.SetCookie(flashCookie, message, maxAge,
		"/", "", false, true)
}

func popFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	c.SetCookie(flashCookie, "", -1,
		"/", "", false, true)
	return message
}

func flashAndRedirect(c *gin.Context, message, location string) {
	setFlash(c, message)
	c.Redirect(http.StatusFound, location)
}
