package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/LordMilo/SmartTaskManager/internal/calendar"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/state"
)

type TaskService struct {
	store  *state.Store
	google *GoogleService
}

func NewTaskService(store *state.Store, google *GoogleService) *TaskService {
	return &TaskService{store: store, google: google}
}

// Create adds a TODO task. Priority defaults to NORMAL and the due date to
// today. When the creating session has Sheets connected a snapshot sync
// follows in the background.
func (s *TaskService) Create(ctx context.Context, sid string, req model.CreateTaskRequest) (model.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: priority %q", ErrInvalid, req.Priority)
	}
	due := strings.TrimSpace(req.DueDate)
	if due == "" {
		due = s.store.Today()
	} else if _, err := calendar.ParseDay(due, s.store.Location()); err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	t, _ := s.store.CreateTask(ctx, model.Task{
		Title:       title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    priority,
		Status:      model.StatusTodo,
		DueDate:     due,
	})
	s.afterCreate(ctx, sid)
	return t, nil
}

// Move changes status; see state.Store.MoveTask for the assignment rule.
func (s *TaskService) Move(ctx context.Context, id string, to model.Status, actor model.Member) (model.Task, error) {
	if !to.Valid() {
		return model.Task{}, fmt.Errorf("%w: status %q", ErrInvalid, to)
	}
	t, _, err := s.store.MoveTask(ctx, id, to, actor)
	return t, err
}

// StartRoutine turns a routine into today's task and hides the routine for
// the rest of the day.
func (s *TaskService) StartRoutine(ctx context.Context, sid, routineID string) (model.Task, error) {
	t, _, err := s.store.ActivateRoutine(ctx, routineID)
	if err != nil {
		return model.Task{}, err
	}
	s.afterCreate(ctx, sid)
	return t, nil
}

func (s *TaskService) afterCreate(ctx context.Context, sid string) {
	if s.google != nil {
		s.google.SyncInBackground(ctx, sid, s.store.Tasks())
	}
}
