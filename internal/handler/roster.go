package handler

import (
	"net/http"

	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/middleware"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/service"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gin-gonic/gin"
)

type RosterHandler struct {
	store  *state.Store
	roster *service.RosterService
	tasks  *service.TaskService
}

func NewRosterHandler(store *state.Store, roster *service.RosterService, tasks *service.TaskService) *RosterHandler {
	return &RosterHandler{store: store, roster: roster, tasks: tasks}
}

func (h *RosterHandler) Members(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Members())
}

func (h *RosterHandler) AddMember(c *gin.Context) {
	var req model.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	m, err := h.roster.AddMember(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("member.add", "id", m.ID, "by", middleware.Actor(c).UserID)
	c.JSON(http.StatusCreated, m)
}

func (h *RosterHandler) RemoveMember(c *gin.Context) {
	id := c.Param("id")
	if err := h.roster.RemoveMember(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	logger.Info("member.remove", "id", id, "by", middleware.Actor(c).UserID)
	c.Status(http.StatusNoContent)
}

// Routines lists what can still be started today.
func (h *RosterHandler) Routines(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.AvailableRoutines())
}

func (h *RosterHandler) AllRoutines(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Routines())
}

func (h *RosterHandler) CreateRoutine(c *gin.Context) {
	var req model.RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	r, err := h.roster.CreateRoutine(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RosterHandler) UpdateRoutine(c *gin.Context) {
	var req model.RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	r, err := h.roster.UpdateRoutine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RosterHandler) DeleteRoutine(c *gin.Context) {
	if err := h.roster.DeleteRoutine(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RosterHandler) ActivateRoutine(c *gin.Context) {
	t, err := h.tasks.StartRoutine(c.Request.Context(), middleware.Actor(c).SessionID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("routine.start", "routine", c.Param("id"), "task", t.ID)
	c.JSON(http.StatusCreated, t)
}
