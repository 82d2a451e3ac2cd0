package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/LordMilo/SmartTaskManager/internal/model"
	"github.com/LordMilo/SmartTaskManager/internal/state"
)

const (
	RoleHeadGardener = "Head Gardener"
	RoleGardener     = "Gardener"
	defaultAdminName = "Admin"
)

type AuthService struct {
	store      *state.Store
	adminPhone string
}

func NewAuthService(store *state.Store, adminPhone string) *AuthService {
	return &AuthService{store: store, adminPhone: adminPhone}
}

// Login looks the phone number up in the roster. An unseen number registers
// a new member: the admin number becomes a Head Gardener, anything else needs
// a name and becomes a Gardener.
func (s *AuthService) Login(ctx context.Context, phone, name string) (model.Member, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" {
		return model.Member{}, fmt.Errorf("%w: phone number is required", ErrInvalid)
	}
	if len(phone) > model.MaxPhoneLen {
		return model.Member{}, fmt.Errorf("%w: phone number longer than %d", ErrInvalid, model.MaxPhoneLen)
	}
	if m, ok := s.store.MemberByPhone(phone); ok {
		return m, nil
	}

	m := model.Member{
		Name:        name,
		PhoneNumber: phone,
		Role:        RoleGardener,
		Avatar:      AvatarURL(phone),
	}
	if phone == s.adminPhone {
		m.Role = RoleHeadGardener
		m.IsAdmin = true
		if m.Name == "" {
			m.Name = defaultAdminName
		}
	} else if m.Name == "" {
		return model.Member{}, fmt.Errorf("%w: name is required for new registration", ErrInvalid)
	}

	m, _ = s.store.AddMember(ctx, m)
	return m, nil
}

func AvatarURL(seed string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/200/200"
}
