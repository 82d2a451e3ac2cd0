package state

import (
	"context"
	"fmt"

	"github.com/LordMilo/SmartTaskManager/internal/model"
)

// Tasks returns a copy of the task collection in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateTask appends t and mirrors it: the task row first, then one row per
// attachment. An empty ID is filled in.
func (s *Store) CreateTask(ctx context.Context, t model.Task) (model.Task, Pending) {
	if t.ID == "" {
		t.ID = s.newID()
	}
	if t.Attachments == nil {
		t.Attachments = []model.Attachment{}
	}
	for i := range t.Attachments {
		if t.Attachments[i].ID == "" {
			t.Attachments[i].ID = s.newID()
		}
	}
	t = t.Clone()

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	row := model.TaskToRow(t)
	attachments := row.Attachments
	row.Attachments = nil
	p := s.persist(ctx, "task.create", func(ctx context.Context) error {
		if err := s.remote.Insert(ctx, model.TableTasks, &row); err != nil {
			return err
		}
		for i := range attachments {
			if err := s.remote.Insert(ctx, model.TableAttachments, &attachments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return t.Clone(), p
}

// MoveTask changes a task's status. Moving an unassigned task into DOING
// assigns it to actor; an existing assignee is kept. The whole task row is
// sent as the remote update.
func (s *Store) MoveTask(ctx context.Context, id string, to model.Status, actor model.Member) (model.Task, Pending, error) {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	from := s.tasks[i].Status
	if !from.CanMove(to) {
		s.mu.Unlock()
		return model.Task{}, nil, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	s.tasks[i].Status = to
	if to == model.StatusDoing && s.tasks[i].AssigneeID == "" && actor.ID != "" {
		s.tasks[i].AssigneeID = actor.ID
	}
	t := s.tasks[i].Clone()
	s.mu.Unlock()

	row := model.TaskToRow(t)
	row.Attachments = nil
	p := s.persist(ctx, "task.move", func(ctx context.Context) error {
		return s.remote.Update(ctx, model.TableTasks, t.ID, &row)
	})
	return t, p, nil
}

// AddAttachment appends a to the task's attachments and inserts its row.
func (s *Store) AddAttachment(ctx context.Context, taskID string, a model.Attachment) (model.Task, Pending, error) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	s.mu.Lock()
	i := s.taskIndex(taskID)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	s.tasks[i].Attachments = append(s.tasks[i].Attachments, a)
	t := s.tasks[i].Clone()
	s.mu.Unlock()

	row := model.AttachmentToRow(taskID, a)
	p := s.persist(ctx, "attachment.add", func(ctx context.Context) error {
		return s.remote.Insert(ctx, model.TableAttachments, &row)
	})
	return t, p, nil
}
