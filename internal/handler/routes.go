package handler

import (
	"github.com/LordMilo/SmartTaskManager/internal/middleware"
	"github.com/LordMilo/SmartTaskManager/internal/session"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth         *AuthHandler
	Tasks        *TaskHandler
	Roster       *RosterHandler
	Integrations *IntegrationHandler
}

// Register mounts the JSON API under /api. Tokens are checked against
// sessions, which must be the store logins are saved to.
func Register(r *gin.Engine, h Handlers, secret []byte, sessions session.Store) {
	r.POST("/api/login", h.Auth.Login)
	r.GET("/api/status", middleware.OptionalAuth(secret, sessions), h.Integrations.Status)

	api := r.Group("/api", middleware.JWTAuth(secret, sessions))
	api.GET("/me", h.Auth.Me)
	api.POST("/logout", h.Auth.Logout)

	api.GET("/tasks", h.Tasks.List)
	api.POST("/tasks", h.Tasks.Create)
	api.GET("/tasks/board", h.Tasks.Board)
	api.GET("/tasks/history", h.Tasks.History)
	api.GET("/tasks/overdue", h.Tasks.Overdue)
	api.GET("/tasks/export.xlsx", h.Tasks.ExportXLSX)
	api.POST("/tasks/:id/move", h.Tasks.Move)
	api.POST("/tasks/:id/attachments", h.Tasks.Attach)
	api.POST("/tasks/:id/speak", h.Tasks.Speak)
	api.POST("/speech/stop", h.Tasks.StopSpeech)
	api.GET("/calendar", h.Tasks.Calendar)

	api.GET("/members", h.Roster.Members)
	api.GET("/routines", h.Roster.Routines)
	api.GET("/routines/all", h.Roster.AllRoutines)
	api.POST("/routines/:id/activate", h.Roster.ActivateRoutine)

	admin := api.Group("", middleware.AdminOnly())
	admin.POST("/members", h.Roster.AddMember)
	admin.DELETE("/members/:id", h.Roster.RemoveMember)
	admin.POST("/routines", h.Roster.CreateRoutine)
	admin.PUT("/routines/:id", h.Roster.UpdateRoutine)
	admin.DELETE("/routines/:id", h.Roster.DeleteRoutine)
	admin.POST("/integrations/catalog/export", h.Integrations.ExportCatalog)

	api.PUT("/integrations/google", h.Integrations.ConnectGoogle)
	api.DELETE("/integrations/google", h.Integrations.DisconnectGoogle)
	api.POST("/integrations/google/sync", h.Integrations.SyncGoogle)
}
