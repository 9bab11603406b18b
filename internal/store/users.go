package store

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/showkit/catalog-api/internal/models"
)

// UserStore is an in-memory user collection keyed by id with a username
// index. Usernames and emails are unique within the store.
type UserStore struct {
	mu         sync.RWMutex
	users      map[int]models.User
	byUsername map[string]int
	byEmail    map[string]int
	nextID     int
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[int]models.User),
		byUsername: make(map[string]int),
		byEmail:    make(map[string]int),
	}
}

// Create registers a new user with a bcrypt-hashed password
func (s *UserStore) Create(username, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[username]; ok {
		return models.User{}, ErrUsernameTaken
	}
	if _, ok := s.byEmail[email]; ok {
		return models.User{}, ErrEmailTaken
	}

	s.nextID++
	user := models.User{
		ID:           s.nextID,
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}
	s.users[user.ID] = user
	s.byUsername[username] = user.ID
	s.byEmail[email] = user.ID
	return user, nil
}

// GetByUsername returns the user with the given username
func (s *UserStore) GetByUsername(username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.users[id], nil
}

// Authenticate verifies a username/password pair. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *UserStore) Authenticate(username, password string) (models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
