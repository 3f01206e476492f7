package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionTokenCookie = "session_token"

const (
	userIDCtxKey    = "user_id"
	usernameCtxKey  = "username"
	sessionIDCtxKey = "session_id"
)

// HandleSessionMiddleware gates every task operation. It resolves the
// session cookie to a server-side session row and binds the identity
// to the request context; without a valid session the request is
// redirected to the login view.
func (h *handlerImpl) HandleSessionMiddleware(c *gin.Context) {
	token, err := c.Cookie(sessionTokenCookie)
	if err != nil {
		h.logger.Warn().Msg("session cookie not found")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.GetByToken(c, token, fingerprint)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("invalid session")
		clearCookie(c, sessionTokenCookie)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(usernameCtxKey, session.Username)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func userIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", false, true)
}
