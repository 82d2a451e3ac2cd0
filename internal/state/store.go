// Package state holds the board's in-memory collections and mirrors every
// mutation to the remote store on a best-effort basis.
//
// Mutations are optimistic: they apply locally first and never roll back. A
// failed remote write flips a sticky offline flag; from then on local state is
// authoritative and remote writes are skipped until the next Initialize.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/calendar"
	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/remote"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const OfflineNotice = "Offline mode: changes are kept on this server only until the next reload."

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Options struct {
	Remote   remote.Client
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
	Logger   *slog.Logger
}

type Store struct {
	remote remote.Client
	loc    *time.Location
	now    func() time.Time
	newID  func() string
	log    *slog.Logger

	offline atomic.Bool
	notice  atomic.Value // string

	// writes counts dispatched remote writes; idle is closed while it is
	// zero. closing refuses new dispatches during Teardown.
	writesMu sync.Mutex
	writes   int
	idle     chan struct{}
	closing  bool

	mu         sync.RWMutex
	members    []model.Member
	tasks      []model.Task
	routines   []model.Routine
	routineLog []model.RoutineLogEntry
}

func New(opts Options) *Store {
	s := &Store{
		remote: opts.Remote,
		loc:    opts.Location,
		now:    opts.Now,
		newID:  opts.NewID,
		log:    opts.Logger,
	}
	if s.remote == nil {
		s.remote = remote.Unreachable{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.notice.Store("")
	s.idle = make(chan struct{})
	close(s.idle)
	return s
}

// Initialize loads members, tasks and routines in three concurrent requests.
// The load is all-or-nothing: any failure leaves every collection empty and
// puts the store in offline mode. The returned error is informational; the
// store is usable either way.
func (s *Store) Initialize(ctx context.Context) error {
	var (
		memberRows  []model.MemberRow
		taskRows    []model.TaskRow
		routineRows []model.RoutineRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		memberRows, err = s.remote.SelectMembers(gctx)
		return err
	})
	g.Go(func() (err error) {
		taskRows, err = s.remote.SelectTasks(gctx)
		return err
	})
	g.Go(func() (err error) {
		routineRows, err = s.remote.SelectRoutines(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.routineLog = nil

	if err != nil {
		s.members, s.tasks, s.routines = []model.Member{}, []model.Task{}, []model.Routine{}
		s.goOffline(OfflineNotice)
		s.log.Warn("state.load_failed", "err", err)
		return fmt.Errorf("initial load: %w", err)
	}

	s.members = make([]model.Member, 0, len(memberRows))
	for _, r := range memberRows {
		s.members = append(s.members, model.MemberFromRow(r))
	}
	s.tasks = make([]model.Task, 0, len(taskRows))
	for _, r := range taskRows {
		s.tasks = append(s.tasks, model.TaskFromRow(r))
	}
	s.routines = make([]model.Routine, 0, len(routineRows))
	for _, r := range routineRows {
		s.routines = append(s.routines, model.RoutineFromRow(r))
	}
	s.offline.Store(false)
	s.notice.Store("")
	s.writesMu.Lock()
	s.closing = false
	s.writesMu.Unlock()
	s.log.Info("state.loaded", "members", len(s.members), "tasks", len(s.tasks), "routines", len(s.routines))
	return nil
}

// Teardown stops dispatching remote writes, waits for in-flight ones (or
// ctx) and then drops all session state. Mutations made until the next
// Initialize stay local.
func (s *Store) Teardown(ctx context.Context) error {
	s.writesMu.Lock()
	s.closing = true
	s.writesMu.Unlock()
	err := s.Drain(ctx)

	s.mu.Lock()
	s.members, s.tasks, s.routines, s.routineLog = nil, nil, nil, nil
	s.mu.Unlock()
	s.offline.Store(false)
	s.notice.Store("")
	return err
}

// Drain blocks until every dispatched remote write has settled.
func (s *Store) Drain(ctx context.Context) error {
	s.writesMu.Lock()
	idle := s.idle
	s.writesMu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginWrite registers a remote write, or reports false while closing.
func (s *Store) beginWrite() bool {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()
	if s.closing {
		return false
	}
	if s.writes == 0 {
		s.idle = make(chan struct{})
	}
	s.writes++
	return true
}

func (s *Store) endWrite() {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()
	s.writes--
	if s.writes == 0 {
		close(s.idle)
	}
}

func (s *Store) Offline() bool { return s.offline.Load() }

func (s *Store) Notice() string { return s.notice.Load().(string) }

func (s *Store) goOffline(notice string) {
	if !s.offline.Swap(true) {
		s.notice.Store(notice)
		s.log.Warn("state.offline")
	}
}

func (s *Store) Location() *time.Location { return s.loc }

func (s *Store) Now() time.Time { return s.now().In(s.loc) }

// Today is the local calendar date, YYYY-MM-DD.
func (s *Store) Today() string { return calendar.DayOf(s.now(), s.loc).String() }
