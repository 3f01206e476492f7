package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskman-dev/taskman/internal/services"
)

type credentialsRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *handlerImpl) HandleIndex(c *gin.Context) {
	token, err := c.Cookie(sessionTokenCookie)
	if err == nil {
		fingerprint, fpErr := generateFingerprint(c)
		if fpErr == nil {
			if _, sessErr := h.sessions.GetByToken(c, token, fingerprint); sessErr == nil {
				c.Redirect(http.StatusFound, "/dashboard")
				return
			}
		}
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *handlerImpl) HandleLoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c)})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	userID, err := h.users.Verify(c, req.Username, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("username", req.Username).
			Msg("failed to login")
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			flashAndRedirect(c, "Incorrect username.", "/login")
		case errors.Is(err, services.ErrUserPasswordMismatch):
			flashAndRedirect(c, "Incorrect password.", "/login")
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
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

	session, token, err := h.sessions.Create(c, userID, fingerprint)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create session")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	setSessionCookie(c, token, time.Until(session.ExpiresAt))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *handlerImpl) HandleRegisterPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c)})
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if req.Username == "" {
		flashAndRedirect(c, "Username is required.", "/register")
		return
	}
	if req.Password == "" {
		flashAndRedirect(c, "Password is required.", "/register")
		return
	}

	userID, err := h.users.Register(c, req.Username, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("username", req.Username).
			Msg("failed to register user")
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			flashAndRedirect(c,
				fmt.Sprintf("User %s is already registered.", req.Username),
				"/register")
		case errors.Is(err, services.ErrEmptyCredentials):
			flashAndRedirect(c, "Username is required.", "/register")
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}
	h.logger.Info().
		Int64("user_id", userID).
		Str("username", req.Username).
		Msg("register request")

	flashAndRedirect(c, "Account created successfully!", "/login")
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	token, err := c.Cookie(sessionTokenCookie)
	if err == nil {
		fingerprint, fpErr := generateFingerprint(c)
		if fpErr == nil {
			session, sessErr := h.sessions.GetByToken(c, token, fingerprint)
			if sessErr == nil {
				if delErr := h.sessions.Delete(c, session.ID); delErr != nil {
					h.logger.Error().
						Err(delErr).
						Msg("failed to delete session")
				}
			}
		}
	}

	clearCookie(c, sessionTokenCookie)
	c.Redirect(http.StatusFound, "/login")
}

func setSessionCookie(c *gin.Context, token string, maxAge time.Duration) {
	const secure, httpOnly = false, true
	c.SetCookie(sessionTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}
