package state

import (
	"context"
	"fmt"

	"github.com/LordMilo/SmartTaskManager/internal/model"
)

func (s *Store) Routines() []model.Routine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Routine, len(s.routines))
	copy(out, s.routines)
	return out
}

func (s *Store) routineIndex(id string) int {
	for i := range s.routines {
		if s.routines[i].ID == id {
			return i
		}
	}
	return -1
}

// AvailableRoutines lists routines not yet started today. The day is
// recomputed on every call, so everything comes back after midnight.
func (s *Store) AvailableRoutines() []model.Routine {
	today := s.Today()
	s.mu.RLock()
	defer s.mu.RUnlock()
	started := map[string]bool{}
	for _, e := range s.routineLog {
		if e.Date == today {
			started[e.RoutineID] = true
		}
	}
	out := []model.Routine{}
	for _, r := range s.routines {
		if !started[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) RoutineLog() []model.RoutineLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RoutineLogEntry, len(s.routineLog))
	copy(out, s.routineLog)
	return out
}

func (s *Store) CreateRoutine(ctx context.Context, r model.Routine) (model.Routine, Pending) {
	if r.ID == "" {
		r.ID = s.newID()
	}
	s.mu.Lock()
	s.routines = append(s.routines, r)
	s.mu.Unlock()

	row := model.RoutineToRow(r)
	p := s.persist(ctx, "routine.create", func(ctx context.Context) error {
		return s.remote.Insert(ctx, model.TableRoutines, &row)
	})
	return r, p
}

// UpdateRoutine replaces the routine with r.ID.
func (s *Store) UpdateRoutine(ctx context.Context, r model.Routine) (Pending, error) {
	s.mu.Lock()
	i := s.routineIndex(r.ID)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("routine %s: %w", r.ID, ErrNotFound)
	}
	s.routines[i] = r
	s.mu.Unlock()

	row := model.RoutineToRow(r)
	return s.persist(ctx, "routine.update", func(ctx context.Context) error {
		return s.remote.Update(ctx, model.TableRoutines, r.ID, &row)
	}), nil
}

func (s *Store) DeleteRoutine(ctx context.Context, id string) (Pending, error) {
	s.mu.Lock()
	i := s.routineIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	s.routines = append(s.routines[:i:i], s.routines[i+1:]...)
	s.mu.Unlock()

	return s.persist(ctx, "routine.delete", func(ctx context.Context) error {
		return s.remote.Delete(ctx, model.TableRoutines, id)
	}), nil
}

// ActivateRoutine creates a TODO task from the routine, due today, and
// records the activation in the day log. Activating twice on the same day
// yields two tasks.
func (s *Store) ActivateRoutine(ctx context.Context, id string) (model.Task, Pending, error) {
	today := s.Today()

	s.mu.Lock()
	i := s.routineIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, nil, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	r := s.routines[i]
	s.routineLog = append(s.routineLog, model.RoutineLogEntry{RoutineID: r.ID, Date: today})
	s.mu.Unlock()

	priority := r.DefaultPriority
	if !priority.Valid() {
		priority = model.PriorityNormal
	}
	t, p := s.CreateTask(ctx, model.Task{
		Title:       r.Title,
		Description: r.Description,
		Priority:    priority,
		Status:      model.StatusTodo,
		DueDate:     today,
	})
	return t, p, nil
}
