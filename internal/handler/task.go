package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/calendar"
	"github.com/LordMilo/SmartTaskManager/internal/export"
	"github.com/LordMilo/SmartTaskManager/internal/integration"
	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/middleware"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/service"
	"github.com/LordMilo/SmartTaskManager/internal/speech"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	store       *state.Store
	tasks       *service.TaskService
	attachments *service.AttachmentService
	speaker     integration.Capability[*speech.Speaker]
}

func NewTaskHandler(store *state.Store, tasks *service.TaskService, attachments *service.AttachmentService, speaker integration.Capability[*speech.Speaker]) *TaskHandler {
	return &TaskHandler{store: store, tasks: tasks, attachments: attachments, speaker: speaker}
}

func (h *TaskHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Tasks())
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), middleware.Actor(c).SessionID, req)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("task.create", "id", t.ID, "uid", middleware.Actor(c).UserID)
	c.JSON(http.StatusCreated, t)
}

// Board is today's kanban: three columns keyed by status.
func (h *TaskHandler) Board(c *gin.Context) {
	c.JSON(http.StatusOK, calendar.Board(h.store.Tasks(), h.store.Now(), h.store.Location()))
}

// History lists completed tasks for ?date=YYYY-MM-DD or ?month=YYYY-MM,
// today by default.
func (h *TaskHandler) History(c *gin.Context) {
	loc := h.store.Location()
	tasks := h.store.Tasks()
	var done []model.Task

	if month := c.Query("month"); month != "" {
		y, m, err := calendar.ParseMonth(month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		done = calendar.CompletedInMonth(tasks, y, m, loc)
	} else {
		day := calendar.DayOf(h.store.Now(), loc)
		if date := c.Query("date"); date != "" {
			d, err := calendar.ParseDay(date, loc)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			day = d
		}
		done = calendar.CompletedOn(tasks, day, loc)
	}
	if done == nil {
		done = []model.Task{}
	}
	c.JSON(http.StatusOK, done)
}

func (h *TaskHandler) Overdue(c *gin.Context) {
	overdue := calendar.Overdue(h.store.Tasks(), h.store.Now(), h.store.Location())
	if overdue == nil {
		overdue = []model.Task{}
	}
	c.JSON(http.StatusOK, overdue)
}

func (h *TaskHandler) Calendar(c *gin.Context) {
	now := h.store.Now()
	y, m := now.Year(), now.Month()
	if month := c.Query("month"); month != "" {
		var err error
		if y, m, err = calendar.ParseMonth(month); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, calendar.MonthGrid(h.store.Tasks(), y, m, now, h.store.Location()))
}

func (h *TaskHandler) Move(c *gin.Context) {
	var req model.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	actor := middleware.Actor(c)
	member, ok := h.store.Member(actor.UserID)
	if !ok {
		member = model.Member{ID: actor.UserID, Name: actor.Name}
	}
	t, err := h.tasks.Move(c.Request.Context(), c.Param("id"), req.Status, member)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("task.move", "id", t.ID, "status", t.Status, "assignee", t.AssigneeID)
	c.JSON(http.StatusOK, t)
}

// Attach takes a multipart "file" field.
func (h *TaskHandler) Attach(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	t, a, err := h.attachments.Capture(c.Request.Context(), middleware.Actor(c).SessionID, c.Param("id"), fh.Filename, f)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("attachment.add", "task", t.ID, "id", a.ID, "type", a.Type)
	c.JSON(http.StatusCreated, gin.H{"task": t, "attachment": a})
}

// Speak toggles the readout of a task: a second call while it is still
// playing stops it.
func (h *TaskHandler) Speak(c *gin.Context) {
	sp, ok := h.speaker.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech unavailable"})
		return
	}
	id := c.Param("id")
	t, found := h.store.Task(id)
	if !found {
		fail(c, fmt.Errorf("task %s: %w", id, state.ErrNotFound))
		return
	}
	if sp.Active() == id {
		sp.Stop()
		c.JSON(http.StatusOK, gin.H{"speaking": false})
		return
	}

	var assignee string
	if m, ok := h.store.Member(t.AssigneeID); ok {
		assignee = m.Name
	}
	text := speech.Readout(t, assignee)
	voice := sp.Speak(c.Request.Context(), id, text, func(o speech.Outcome) {
		logger.Info("speech.done", "task", id, "outcome", o.String())
	})
	c.JSON(http.StatusOK, gin.H{"speaking": true, "lang": speech.DetectLang(text), "voice": voice.Name})
}

func (h *TaskHandler) StopSpeech(c *gin.Context) {
	if sp, ok := h.speaker.Get(); ok {
		sp.Stop()
	}
	c.JSON(http.StatusOK, gin.H{"speaking": false})
}

func (h *TaskHandler) ExportXLSX(c *gin.Context) {
	data, err := export.XLSX(h.store.Tasks())
	if err != nil {
		fail(c, err)
		return
	}
	name := fmt.Sprintf("tasks-%s.xlsx", h.store.Now().Format(time.DateOnly))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
