package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/state"
)

// RosterService covers the admin-managed collections: members and routines.
type RosterService struct {
	store *state.Store
}

func NewRosterService(store *state.Store) *RosterService {
	return &RosterService{store: store}
}

func (s *RosterService) AddMember(ctx context.Context, req model.AddMemberRequest) (model.Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Member{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if len(phone) > model.MaxPhoneLen {
		return model.Member{}, fmt.Errorf("%w: phone number longer than %d", ErrInvalid, model.MaxPhoneLen)
	}
	if phone != "" {
		if _, taken := s.store.MemberByPhone(phone); taken {
			return model.Member{}, fmt.Errorf("%w: phone number %s already registered", ErrInvalid, phone)
		}
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = RoleGardener
	}
	seed := phone
	if seed == "" {
		seed = name
	}
	m, _ := s.store.AddMember(ctx, model.Member{
		Name:        name,
		Role:        role,
		PhoneNumber: phone,
		Avatar:      AvatarURL(seed),
	})
	return m, nil
}

func (s *RosterService) RemoveMember(ctx context.Context, id string) error {
	_, err := s.store.RemoveMember(ctx, id)
	return err
}

func routineFromRequest(req model.RoutineRequest) (model.Routine, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Routine{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	priority := req.DefaultPriority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return model.Routine{}, fmt.Errorf("%w: priority %q", ErrInvalid, req.DefaultPriority)
	}
	return model.Routine{Title: title, Description: req.Description, DefaultPriority: priority}, nil
}

func (s *RosterService) CreateRoutine(ctx context.Context, req model.RoutineRequest) (model.Routine, error) {
	r, err := routineFromRequest(req)
	if err != nil {
		return model.Routine{}, err
	}
	r, _ = s.store.CreateRoutine(ctx, r)
	return r, nil
}

func (s *RosterService) UpdateRoutine(ctx context.Context, id string, req model.RoutineRequest) (model.Routine, error) {
	r, err := routineFromRequest(req)
	if err != nil {
		return model.Routine{}, err
	}
	r.ID = id
	if _, err := s.store.UpdateRoutine(ctx, r); err != nil {
		return model.Routine{}, err
	}
	return r, nil
}

func (s *RosterService) DeleteRoutine(ctx context.Context, id string) error {
	_, err := s.store.DeleteRoutine(ctx, id)
	return err
}
