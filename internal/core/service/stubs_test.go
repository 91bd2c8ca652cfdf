package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/peliculas/catalog-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserStore struct {
	mu        sync.Mutex
	users     map[string]*domain.User // keyed by normalized username
	roles     map[string]bool
	nextID    int
	findErr   error // if set, FindByUsername returns this error
	assignErr error // if set, AssignRole returns this error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*domain.User), roles: make(map[string]bool)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[domain.NormalizeUsername(username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: domain.ResourceUser, ID: id}
}

func (s *stubUserStore) List(_ context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *stubUserStore) VerifyPassword(user *domain.User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

func (s *stubUserStore) CreateIdentity(_ context.Context, username, plaintext, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.NormalizeUsername(username)
	if key == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}
	if _, exists := s.users[key]; exists {
		return nil, domain.NewValidationError("username", fmt.Sprintf("username '%s' is already taken", username))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.nextID++
	u := &domain.User{
		ID:           fmt.Sprintf("u%d", s.nextID),
		Username:     strings.TrimSpace(username),
		Name:         name,
		PasswordHash: string(hash),
	}
	s.users[key] = u
	return cloneUser(u), nil
}

func (s *stubUserStore) DeleteIdentity(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, domain.NormalizeUsername(user.Username))
	return nil
}

func (s *stubUserStore) RolesOf(_ context.Context, user *domain.User) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[domain.NormalizeUsername(user.Username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return append([]string(nil), u.Roles...), nil
}

func (s *stubUserStore) RoleExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles[name], nil
}

func (s *stubUserStore) CreateRole(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[name] = true
	return nil
}

func (s *stubUserStore) AssignRole(_ context.Context, user *domain.User, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignErr != nil {
		return s.assignErr
	}
	u, ok := s.users[domain.NormalizeUsername(user.Username)]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, r := range u.Roles {
		if r == name {
			return nil
		}
	}
	u.Roles = append(u.Roles, name)
	return nil
}

// countAdmins reports how many stored users hold the admin role.
func (s *stubUserStore) countAdmins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		for _, r := range u.Roles {
			if r == domain.RoleAdmin {
				n++
			}
		}
	}
	return n
}

type stubMovieRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Movie
	nextID    int
	createErr error // if set, Create returns this error
	updateErr error // if set, Update returns this error
}

func newStubMovieRepo() *stubMovieRepo {
	return &stubMovieRepo{byID: make(map[string]*domain.Movie)}
}

func cloneMovie(m *domain.Movie) *domain.Movie {
	clone := *m
	clone.Images = append([]domain.ImageSlot(nil), m.Images...)
	return &clone
}

func (r *stubMovieRepo) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return fmt.Sprintf("m%03d", r.nextID)
}

func (r *stubMovieRepo) FindByID(_ context.Context, id string) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: domain.ResourceMovie, ID: id}
	}
	return cloneMovie(m), nil
}

// sorted mirrors the name ordering of the real repository.
func (r *stubMovieRepo) sorted(keep func(*domain.Movie) bool) []*domain.Movie {
	out := make([]*domain.Movie, 0, len(r.byID))
	for _, m := range r.byID {
		if keep == nil || keep(m) {
			out = append(out, cloneMovie(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *stubMovieRepo) List(_ context.Context, skip, limit int64) ([]*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(nil)
	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (r *stubMovieRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *stubMovieRepo) Search(_ context.Context, term string) ([]*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(m *domain.Movie) bool {
		return strings.Contains(m.Name, term) || strings.Contains(m.Description, term)
	}), nil
}

func (r *stubMovieRepo) ListByCategory(_ context.Context, categoryID string) ([]*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(m *domain.Movie) bool { return m.CategoryID == categoryID }), nil
}

func (r *stubMovieRepo) ExistsByName(_ context.Context, name, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.byID {
		if id != excludeID && domain.NameKey(m.Name) == domain.NameKey(name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMovieRepo) Create(_ context.Context, m *domain.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[m.ID] = cloneMovie(m)
	return nil
}

func (r *stubMovieRepo) Update(_ context.Context, m *domain.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return &domain.NotFoundError{Resource: domain.ResourceMovie, ID: m.ID}
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	r.byID[m.ID] = cloneMovie(m)
	return nil
}

func (r *stubMovieRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return &domain.NotFoundError{Resource: domain.ResourceMovie, ID: id}
	}
	delete(r.byID, id)
	return nil
}

type stubCategoryRepo struct {
	byID   map[string]*domain.Category
	nextID int
}

func newStubCategoryRepo(names ...string) *stubCategoryRepo {
	r := &stubCategoryRepo{byID: make(map[string]*domain.Category)}
	for _, n := range names {
		_ = r.Create(context.Background(), &domain.Category{Name: n})
	}
	return r
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id string) (*domain.Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: domain.ResourceCategory, ID: id}
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.byID))
	for _, c := range r.byID {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) ExistsByName(_ context.Context, name, excludeID string) (bool, error) {
	for id, c := range r.byID {
		if id != excludeID && domain.NameKey(c.Name) == domain.NameKey(name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.nextID++
	c.ID = fmt.Sprintf("c%d", r.nextID)
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	if _, ok := r.byID[c.ID]; !ok {
		return &domain.NotFoundError{Resource: domain.ResourceCategory, ID: c.ID}
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}
