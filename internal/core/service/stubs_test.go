package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	seq       int
	createErr error
	updateErr error
	deleteErr error
	tokenErr  error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Tokens = append([]string(nil), u.Tokens...)
	clone.Avatar = append([]byte(nil), u.Avatar...)
	return &clone
}

// validID mimics ObjectID hex validation: ids issued by this stub look like "u0001".
func validID(id string) bool {
	return strings.HasPrefix(id, "u") || strings.HasPrefix(id, "t")
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%04d", r.seq)
	r.byID[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !validID(id) {
		return nil, domain.ErrInvalidID
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDAndToken(_ context.Context, id, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, c domain.UserChanges) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if c.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && other.Email == *c.Email {
				return nil, domain.ErrUserExists
			}
		}
		u.Email = *c.Email
	}
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.Age != nil {
		u.Age = c.Age
	}
	if c.ClearAge {
		u.Age = nil
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) AddToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenErr != nil {
		return r.tokenErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (r *stubUserRepo) RemoveToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenErr != nil {
		return r.tokenErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

func (r *stubUserRepo) ClearTokens(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenErr != nil {
		return r.tokenErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = []string{}
	return nil
}

func (r *stubUserRepo) SetAvatar(_ context.Context, id string, avatar []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Avatar = avatar
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---------------------------------------------------------------------------
// In-memory task repository
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Task
	order     []string
	seq       int
	createErr error
	listErr   error
	deleteErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *task
	clone.ID = fmt.Sprintf("t%04d", r.seq)
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *stubTaskRepo) owned(id, owner string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrInvalidID
	}
	t, ok := r.byID[id]
	if !ok || t.Owner != owner {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func (r *stubTaskRepo) FindOwned(_ context.Context, id, owner string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.owned(id, owner)
	if err != nil {
		return nil, err
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) UpdateOwned(_ context.Context, id, owner string, c domain.TaskChanges) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.owned(id, owner)
	if err != nil {
		return nil, err
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Completed != nil {
		t.Completed = *c.Completed
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) DeleteOwned(_ context.Context, id, owner string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.owned(id, owner)
	if err != nil {
		return nil, err
	}
	delete(r.byID, id)
	return t, nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubTaskRepo) List(_ context.Context, f ports.ListTasksFilter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}

	var matched []*domain.Task
	for _, id := range r.order {
		t, ok := r.byID[id]
		if !ok || t.Owner != f.Owner {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		clone := *t
		matched = append(matched, &clone)
	}

	if f.SortBy == "description" {
		sort.SliceStable(matched, func(i, j int) bool {
			if f.Desc {
				return matched[i].Description > matched[j].Description
			}
			return matched[i].Description < matched[j].Description
		})
	}

	if f.Skip >= len(matched) {
		return []*domain.Task{}, nil
	}
	matched = matched[f.Skip:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *stubTaskRepo) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	var n int64
	for id, t := range r.byID {
		if t.Owner == owner {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubTaskRepo) countOwned(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.byID {
		if t.Owner == owner {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

var errBadToken = errors.New("bad token")

// stubTokens issues "tok-<userID>-<n>" and verifies by parsing it back.
type stubTokens struct {
	mu sync.Mutex
	n  int
}

func (s *stubTokens) Issue(userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("tok-%s-%d", userID, s.n), nil
}

func (s *stubTokens) Verify(token string) (string, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 3 || parts[0] != "tok" {
		return "", errBadToken
	}
	return parts[1], nil
}

type stubAvatars struct {
	err error
	in  []byte
}

func (s *stubAvatars) Process(data []byte) ([]byte, error) {
	s.in = data
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png:" + string(data)), nil
}

type stubNotifier struct {
	mu       sync.Mutex
	welcome  []string
	farewell []string
}

func (n *stubNotifier) Welcome(u *domain.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcome = append(n.welcome, u.Email)
}

func (n *stubNotifier) Farewell(u *domain.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.farewell = append(n.farewell, u.Email)
}
