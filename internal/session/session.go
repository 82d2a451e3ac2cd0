// Package session persists the logged-in member across reloads. Each client
// session owns a single key holding the serialized Member; logout clears it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/model"

	"github.com/go-redis/redis/v8"
)

const KeyPrefix = "gardenos_user:"

var ErrNoSession = errors.New("no persisted member")

type Store interface {
	Save(ctx context.Context, sid string, m model.Member) error
	Load(ctx context.Context, sid string) (model.Member, error)
	Clear(ctx context.Context, sid string) error
}

func Key(sid string) string { return KeyPrefix + sid }

// Redis keeps one string key per session with an optional expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (s *Redis) Save(ctx context.Context, sid string, m model.Member) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode member: %w", err)
	}
	if err := s.client.Set(ctx, Key(sid), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context, sid string) (model.Member, error) {
	data, err := s.client.Get(ctx, Key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Member{}, ErrNoSession
	}
	if err != nil {
		return model.Member{}, fmt.Errorf("session load: %w", err)
	}
	var m model.Member
	if err := json.Unmarshal(data, &m); err != nil {
		// a corrupt entry is treated as logged out
		return model.Member{}, ErrNoSession
	}
	return m, nil
}

func (s *Redis) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, Key(sid)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// File stores every session in one JSON document. Suitable for a single
// server process.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File { return &File{path: path} }

func (s *File) Save(_ context.Context, sid string, m model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode member: %w", err)
	}
	all[Key(sid)] = string(data)
	return s.write(all)
}

func (s *File) Load(_ context.Context, sid string) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return model.Member{}, err
	}
	raw, ok := all[Key(sid)]
	if !ok {
		return model.Member{}, ErrNoSession
	}
	var m model.Member
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return model.Member{}, ErrNoSession
	}
	return m, nil
}

func (s *File) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := all[Key(sid)]; !ok {
		return nil
	}
	delete(all, Key(sid))
	return s.write(all)
}

func (s *File) read() (map[string]string, error) {
	all := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return all, nil
}

func (s *File) write(all map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
