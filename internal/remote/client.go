// Package remote issues table-level CRUD against the hosted store the board
// mirrors to. Every call returns data or an error; callers decide what a
// failure means.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/LordMilo/SmartTaskManager/internal/model"
)

var ErrNoBackend = errors.New("remote store not configured")

// Client is the table-level contract. Rows passed to Insert and Update are
// pointers to the model row structs; tables are the model.Table* names.
type Client interface {
	SelectMembers(ctx context.Context) ([]model.MemberRow, error)
	SelectTasks(ctx context.Context) ([]model.TaskRow, error)
	SelectRoutines(ctx context.Context) ([]model.RoutineRow, error)
	Insert(ctx context.Context, table string, row any) error
	Update(ctx context.Context, table, id string, row any) error
	Delete(ctx context.Context, table, id string) error
}

// Unreachable stands in when no backend is configured. Every call fails, so
// the board starts in offline mode.
type Unreachable struct{}

func (Unreachable) SelectMembers(context.Context) ([]model.MemberRow, error) {
	return nil, ErrNoBackend
}

func (Unreachable) SelectTasks(context.Context) ([]model.TaskRow, error) {
	return nil, ErrNoBackend
}

func (Unreachable) SelectRoutines(context.Context) ([]model.RoutineRow, error) {
	return nil, ErrNoBackend
}

func (Unreachable) Insert(context.Context, string, any) error         { return ErrNoBackend }
func (Unreachable) Update(context.Context, string, string, any) error { return ErrNoBackend }
func (Unreachable) Delete(context.Context, string, string) error      { return ErrNoBackend }

func checkTable(table string) error {
	switch table {
	case model.TableMembers, model.TableTasks, model.TableAttachments, model.TableRoutines:
		return nil
	}
	return fmt.Errorf("unknown table %q", table)
}
