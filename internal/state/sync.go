package state

import (
	"context"
)

type SyncStatus int

const (
	// Synced: the remote write succeeded.
	Synced SyncStatus = iota
	// Degraded: the remote write failed and the store went offline. The local
	// mutation stands.
	Degraded
	// LocalOnly: the store was already offline or shutting down, no remote
	// write was attempted.
	LocalOnly
)

func (s SyncStatus) String() string {
	switch s {
	case Synced:
		return "synced"
	case Degraded:
		return "degraded"
	case LocalOnly:
		return "local-only"
	}
	return "unknown"
}

type SyncResult struct {
	Status SyncStatus
	Err    error
}

// Pending delivers exactly one SyncResult once the remote side of a mutation
// settles. Receiving from it is optional.
type Pending <-chan SyncResult

// Wait blocks until the result arrives or ctx is done.
func (p Pending) Wait(ctx context.Context) (SyncResult, error) {
	select {
	case r := <-p:
		return r, nil
	case <-ctx.Done():
		return SyncResult{}, ctx.Err()
	}
}

func settled(r SyncResult) Pending {
	ch := make(chan SyncResult, 1)
	ch <- r
	close(ch)
	return ch
}

// persist mirrors a mutation that has already been applied locally. The
// offline check happens at dispatch. The write runs detached from ctx's
// cancellation and has no deadline of its own.
func (s *Store) persist(ctx context.Context, op string, write func(context.Context) error) Pending {
	if s.offline.Load() {
		s.log.Debug("sync.skipped", "op", op)
		return settled(SyncResult{Status: LocalOnly})
	}

	if !s.beginWrite() {
		s.log.Debug("sync.closed", "op", op)
		return settled(SyncResult{Status: LocalOnly})
	}

	ch := make(chan SyncResult, 1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer s.endWrite()
		defer close(ch)
		if err := write(ctx); err != nil {
			s.goOffline(OfflineNotice)
			s.log.Warn("sync.degraded", "op", op, "err", err)
			ch <- SyncResult{Status: Degraded, Err: err}
			return
		}
		s.log.Debug("sync.ok", "op", op)
		ch <- SyncResult{Status: Synced}
	}()
	return ch
}
