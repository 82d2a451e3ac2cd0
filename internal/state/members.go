package state

import (
	"context"
	"fmt"

	"github.com/LordMilo/SmartTaskManager/internal/model"
)

func (s *Store) Members() []model.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Member, len(s.members))
	copy(out, s.members)
	return out
}

func (s *Store) Member(id string) (model.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return model.Member{}, false
}

// MemberByPhone matches the phone number exactly.
func (s *Store) MemberByPhone(phone string) (model.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.PhoneNumber == phone {
			return m, true
		}
	}
	return model.Member{}, false
}

func (s *Store) AddMember(ctx context.Context, m model.Member) (model.Member, Pending) {
	if m.ID == "" {
		m.ID = s.newID()
	}
	s.mu.Lock()
	s.members = append(s.members, m)
	s.mu.Unlock()

	row := model.MemberToRow(m)
	p := s.persist(ctx, "member.add", func(ctx context.Context) error {
		return s.remote.Insert(ctx, model.TableMembers, &row)
	})
	return m, p
}

// RemoveMember drops the member locally and deletes the remote row. Tasks
// that reference the member keep their assignee id.
func (s *Store) RemoveMember(ctx context.Context, id string) (Pending, error) {
	s.mu.Lock()
	i := -1
	for j := range s.members {
		if s.members[j].ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	s.members = append(s.members[:i:i], s.members[i+1:]...)
	s.mu.Unlock()

	return s.persist(ctx, "member.remove", func(ctx context.Context) error {
		return s.remote.Delete(ctx, model.TableMembers, id)
	}), nil
}

// RestoreMember puts a member restored from a persisted session back into
// the local collection when it is missing. Nothing is written remotely.
func (s *Store) RestoreMember(m model.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.ID == m.ID {
			return
		}
	}
	s.members = append(s.members, m)
}
