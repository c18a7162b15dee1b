// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/face-engine/internal/database"
)

// Store is an in-memory database shared by the mock repositories.
// It keeps the cascade and set-null semantics of the PostgreSQL schema.
type Store struct {
	mu        sync.RWMutex
	users     map[int64]*database.User
	encodings []database.StoredEncoding
	logs      []database.RecognitionLog
	cameras   map[int64]*database.Camera
	nextID    int64

	Users     *MockUserRepository
	Encodings *MockEncodingStore
	Logs      *MockRecognitionLogStore
	Cameras   *MockCameraStore
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	s := &Store{
		users:   make(map[int64]*database.User),
		cameras: make(map[int64]*database.Camera),
	}
	s.Users = &MockUserRepository{s: s}
	s.Encodings = &MockEncodingStore{s: s}
	s.Logs = &MockRecognitionLogStore{s: s}
	s.Cameras = &MockCameraStore{s: s}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// MockUserRepository is a mock implementation of database.UserWriter
type MockUserRepository struct {
	s *Store

	// Error injection
	GetError         error
	EmailExistsError error
	ListError        error
	CreateError      error
	DeleteError      error

	// BeforeCreate runs inside CreateWithEncoding before the email is checked,
	// letting tests interleave a concurrent registration.
	BeforeCreate func()
}

// AddUser inserts a user directly, without an encoding
func (m *MockUserRepository) AddUser(u database.User) int64 {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u.ID = m.s.id()
	m.s.users[u.ID] = &u
	return u.ID
}

// Get returns a copy of the user
func (m *MockUserRepository) Get(ctx context.Context, id int64) (*database.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// EmailExists checks for a user with the email, case-insensitively
func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsError != nil {
		return false, m.EmailExistsError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.s.emailTaken(email), nil
}

func (s *Store) emailTaken(email string) bool {
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// List returns all users ordered by id
func (m *MockUserRepository) List(ctx context.Context) ([]database.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.s.sortedUsers(func(*database.User) bool { return true }), nil
}

// ListWithoutEncoding returns users with no stored encoding
func (m *MockUserRepository) ListWithoutEncoding(ctx context.Context) ([]database.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.s.sortedUsers(func(u *database.User) bool {
		return !slices.ContainsFunc(m.s.encodings, func(e database.StoredEncoding) bool {
			return e.UserID == u.ID
		})
	}), nil
}

func (s *Store) sortedUsers(keep func(*database.User) bool) []database.User {
	var users []database.User
	for _, u := range s.users {
		if keep(u) {
			users = append(users, *u)
		}
	}
	slices.SortFunc(users, func(a, b database.User) int { return int(a.ID - b.ID) })
	return users
}

// CreateWithEncoding inserts the user and encoding atomically, enforcing unique emails
func (m *MockUserRepository) CreateWithEncoding(ctx context.Context, u *database.User, encoding []float64) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if m.BeforeCreate != nil {
		m.BeforeCreate()
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.emailTaken(u.Email) {
		return database.ErrDuplicateEmail
	}
	now := time.Now()
	u.ID = m.s.id()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.s.users[u.ID] = &cp
	m.s.encodings = append(m.s.encodings, database.StoredEncoding{
		ID:        m.s.id(),
		UserID:    u.ID,
		Encoding:  slices.Clone(encoding),
		CreatedAt: now,
	})
	return nil
}

// Delete removes the user, cascades encodings and nulls log references
func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.s.users, id)
	m.s.encodings = slices.DeleteFunc(m.s.encodings, func(e database.StoredEncoding) bool {
		return e.UserID == id
	})
	for i := range m.s.logs {
		if m.s.logs[i].UserID != nil && *m.s.logs[i].UserID == id {
			m.s.logs[i].UserID = nil
		}
	}
	return nil
}

// Count returns the number of users
func (m *MockUserRepository) Count() int {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.users)
}

// MockEncodingStore is a mock implementation of database.EncodingStore
type MockEncodingStore struct {
	s *Store

	// Error injection
	AddError   error
	AllError   error
	CountError error
}

// Add appends an encoding
func (m *MockEncodingStore) Add(ctx context.Context, userID int64, encoding []float64) (int64, error) {
	if m.AddError != nil {
		return 0, m.AddError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	id := m.s.id()
	m.s.encodings = append(m.s.encodings, database.StoredEncoding{
		ID:        id,
		UserID:    userID,
		Encoding:  slices.Clone(encoding),
		CreatedAt: time.Now(),
	})
	return id, nil
}

// All returns the encodings in insertion order
func (m *MockEncodingStore) All(ctx context.Context) ([]database.StoredEncoding, error) {
	if m.AllError != nil {
		return nil, m.AllError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return slices.Clone(m.s.encodings), nil
}

// Count returns the number of encodings
func (m *MockEncodingStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.encodings), nil
}

// MockRecognitionLogStore is a mock implementation of database.RecognitionLogStore
type MockRecognitionLogStore struct {
	s *Store

	// Error injection
	AppendError error
	ListError   error
}

// Append stores a log row
func (m *MockRecognitionLogStore) Append(ctx context.Context, l *database.RecognitionLog) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	l.ID = m.s.id()
	l.CreatedAt = time.Now()
	cp := *l
	if l.UserID != nil {
		id := *l.UserID
		cp.UserID = &id
	}
	m.s.logs = append(m.s.logs, cp)
	return nil
}

// List returns log rows newest first, joined with user names
func (m *MockRecognitionLogStore) List(ctx context.Context) ([]database.RecognitionLogEntry, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	entries := make([]database.RecognitionLogEntry, 0, len(m.s.logs))
	for i := len(m.s.logs) - 1; i >= 0; i-- {
		e := database.RecognitionLogEntry{RecognitionLog: m.s.logs[i]}
		if e.UserID != nil {
			if u, ok := m.s.users[*e.UserID]; ok {
				e.FirstName = u.FirstName
				e.LastName = u.LastName
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Count returns the number of log rows
func (m *MockRecognitionLogStore) Count() int {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.logs)
}

// MockCameraStore is a mock implementation of database.CameraStore
type MockCameraStore struct {
	s *Store

	// Error injection
	ListError   error
	GetError    error
	CreateError error
	UpdateError error
	DeleteError error
}

// AddCamera inserts a camera directly
func (m *MockCameraStore) AddCamera(c database.Camera) int64 {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c.ID = m.s.id()
	m.s.cameras[c.ID] = &c
	return c.ID
}

// List returns cameras ordered by id
func (m *MockCameraStore) List(ctx context.Context) ([]database.Camera, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	cameras := make([]database.Camera, 0, len(m.s.cameras))
	for _, c := range m.s.cameras {
		cameras = append(cameras, *c)
	}
	slices.SortFunc(cameras, func(a, b database.Camera) int { return int(a.ID - b.ID) })
	return cameras, nil
}

// Get returns a copy of the camera
func (m *MockCameraStore) Get(ctx context.Context, id int64) (*database.Camera, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	c, ok := m.s.cameras[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Create stores a camera
func (m *MockCameraStore) Create(ctx context.Context, c *database.Camera) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now()
	c.ID = m.s.id()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.s.cameras[c.ID] = &cp
	return nil
}

// Update applies a partial update
func (m *MockCameraStore) Update(ctx context.Context, id int64, u database.CameraUpdate) (*database.Camera, error) {
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.cameras[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.Apply(c)
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

// Delete removes a camera
func (m *MockCameraStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.cameras[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.s.cameras, id)
	return nil
}

// Compile-time interface checks
var (
	_ database.UserWriter          = (*MockUserRepository)(nil)
	_ database.EncodingStore       = (*MockEncodingStore)(nil)
	_ database.RecognitionLogStore = (*MockRecognitionLogStore)(nil)
	_ database.CameraStore         = (*MockCameraStore)(nil)
)
