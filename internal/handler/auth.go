package handler

import (
	"errors"
	"net/http"

	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/middleware"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/service"
	"github.com/LordMilo/SmartTaskManager/internal/session"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth     *service.AuthService
	sessions session.Store
	store    *state.Store
	google   *service.GoogleService
	secret   []byte
}

func NewAuthHandler(auth *service.AuthService, sessions session.Store, store *state.Store, google *service.GoogleService, secret []byte) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, store: store, google: google, secret: secret}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone number is required"})
		return
	}

	m, err := h.auth.Login(c.Request.Context(), req.Phone, req.Name)
	if err != nil {
		logger.Warn("login.failed", "phone", req.Phone, "err", err)
		fail(c, err)
		return
	}

	sid := uuid.NewString()
	if err := h.sessions.Save(c.Request.Context(), sid, m); err != nil {
		logger.Warn("session.save_failed", "uid", m.ID, "err", err)
		fail(c, err)
		return
	}
	token, err := middleware.NewToken(h.secret, middleware.Identity{
		UserID: m.ID, Name: m.Name, Admin: m.IsAdmin, SessionID: sid,
	})
	if err != nil {
		fail(c, err)
		return
	}

	logger.Info("login.ok", "uid", m.ID, "name", m.Name, "admin", m.IsAdmin)
	c.JSON(http.StatusOK, model.LoginResponse{Token: token, Member: m})
}

// Me restores the persisted member. A member missing from the roster, e.g.
// after an offline start, is put back locally.
func (h *AuthHandler) Me(c *gin.Context) {
	id := middleware.Actor(c)
	m, err := h.sessions.Load(c.Request.Context(), id.SessionID)
	if errors.Is(err, session.ErrNoSession) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	h.store.RestoreMember(m)
	c.JSON(http.StatusOK, m)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	id := middleware.Actor(c)
	if err := h.sessions.Clear(c.Request.Context(), id.SessionID); err != nil {
		logger.Warn("session.clear_failed", "uid", id.UserID, "err", err)
	}
	h.google.Disconnect(id.SessionID)
	logger.Info("logout.ok", "uid", id.UserID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
