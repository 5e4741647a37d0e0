package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"discussify/internal/model"
	"discussify/internal/repository/mysql"
)

// newTestDB opens a throwaway in-memory database migrated to the full
// schema. The shared-cache name is keyed by test so parallel tests do not
// see each other's data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, mysql.AutoMigrate(db))
	return db
}

// fakePublisher records events instead of talking to a broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	CommunityID uint64
	Event       string
}

func (p *fakePublisher) Publish(_ context.Context, communityID uint64, event string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{CommunityID: communityID, Event: event})
	return nil
}

func (p *fakePublisher) byEvent(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// memTokenStore is an in-process session store for tests.
type memTokenStore struct {
	mu     sync.Mutex
	tokens map[uint64]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[uint64]string{}}
}

func (s *memTokenStore) Add(userID uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *memTokenStore) Get(userID uint64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, found := s.tokens[userID]
	if !found {
		return "", fmt.Errorf("no session for user %d", userID)
	}
	return token, nil
}

func (s *memTokenStore) Extend(uint64) error { return nil }

func (s *memTokenStore) Delete(userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

// seedUser inserts an account directly, bypassing the register flow.
func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$bogus.hash.for.tests.only.bogus.hash.for.tests.xxx",
		Role:     model.RoleUser,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedCommunity creates a community through the service so the admin seat
// and member count are set up the same way production does it.
func seedCommunity(t *testing.T, db *gorm.DB, creator *model.User, name string) *model.Community {
	t.Helper()
	svc := NewCommunityService(db, NewNotificationService(db))
	c, err := svc.Create(creator, CreateCommunityInput{
		Name:        name,
		Description: "a test community",
		Categories:  []string{"Technology"},
	})
	require.NoError(t, err)
	return c
}

func idStr(id uint64) string {
	return fmt.Sprintf("%d", id)
}
