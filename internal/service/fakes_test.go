package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pagescribe/pagescribe/internal/cache"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/repository"
	"github.com/pagescribe/pagescribe/internal/scraper"
)

// memoryStore implements UserStore, ScrapedStore and PromptLogStore with the
// same ownership rules as the Postgres repository.
type memoryStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	scraped map[string]*model.ScrapedRecord
	logs    map[string]*model.PromptLog
	failErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:   make(map[string]*model.User),
		scraped: make(map[string]*model.ScrapedRecord),
		logs:    make(map[string]*model.PromptLog),
	}
}

func (m *memoryStore) GetOrCreateUser(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return u, nil
		}
	}
	cp := *user
	m.users[cp.ID] = &cp
	return &cp, nil
}

func (m *memoryStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) CreateScrapedRecord(_ context.Context, rec *model.ScrapedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cp := *rec
	m.scraped[rec.ID] = &cp
	return nil
}

func (m *memoryStore) GetScrapedRecord(_ context.Context, id, userID string) (*model.ScrapedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.scraped[id]
	if !ok || rec.UserID != userID {
		return nil, repository.ErrScrapedRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryStore) ListScrapedRecords(_ context.Context, userID string) ([]*model.ScrapedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ScrapedRecord
	for _, rec := range m.scraped {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateScrapedRecord(_ context.Context, rec *model.ScrapedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.scraped[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return repository.ErrScrapedRecordNotFound
	}
	cp := *rec
	m.scraped[rec.ID] = &cp
	return nil
}

func (m *memoryStore) DeleteScrapedRecord(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.scraped[id]
	if !ok || rec.UserID != userID {
		return repository.ErrScrapedRecordNotFound
	}
	delete(m.scraped, id)
	return nil
}

func (m *memoryStore) CreatePromptLog(_ context.Context, log *model.PromptLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *memoryStore) GetPromptLog(_ context.Context, id, userID string) (*model.PromptLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log, ok := m.logs[id]
	if !ok || log.UserID != userID {
		return nil, repository.ErrPromptLogNotFound
	}
	cp := *log
	return &cp, nil
}

func (m *memoryStore) ListPromptLogs(_ context.Context, userID string) ([]*model.PromptLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PromptLog
	for _, log := range m.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (m *memoryStore) UpdatePromptLog(_ context.Context, log *model.PromptLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.logs[log.ID]
	if !ok || existing.UserID != log.UserID {
		return repository.ErrPromptLogNotFound
	}
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *memoryStore) DeletePromptLog(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log, ok := m.logs[id]
	if !ok || log.UserID != userID {
		return repository.ErrPromptLogNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *memoryStore) counts() (users, scraped, logs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), len(m.scraped), len(m.logs)
}

// fakeScraper returns a canned result.
type fakeScraper struct {
	result *scraper.Result
	calls  int
}

func (f *fakeScraper) Scrape(_ context.Context, rawURL string) *scraper.Result {
	f.calls++
	if f.result == nil {
		return &scraper.Result{URL: rawURL, Metadata: model.Metadata{model.MetaError: "no result configured"}}
	}
	return f.result
}

// fakeSummarizer returns a canned output or error.
type fakeSummarizer struct {
	output string
	err    error
	inputs []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.inputs = append(f.inputs, text)
	return f.output, f.err
}

// fakeProvider returns a canned identity or error.
type fakeProvider struct {
	identity *model.Identity
	err      error
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, _ string) (*model.Identity, error) {
	return f.identity, f.err
}

// fakeSessions keeps sessions and states in maps.
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	states   map[string]bool
	ttl      time.Duration
	next     int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions: make(map[string]*model.Session),
		states:   make(map[string]bool),
	}
}

func (f *fakeSessions) CreateSession(_ context.Context, userID string, ttl time.Duration) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.ttl = ttl
	s := &model.Session{ID: fmt.Sprintf("sess-%d", f.next), UserID: userID, CreatedAt: time.Now()}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, cache.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) SaveOAuthState(_ context.Context, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state] = true
	return nil
}

func (f *fakeSessions) ConsumeOAuthState(_ context.Context, state string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok := f.states[state]
	delete(f.states, state)
	return ok, nil
}
