package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/digkill/TGCreditBot/internal/models"
	"github.com/digkill/TGCreditBot/internal/openai"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	mu      sync.Mutex
	credits map[int64]int
	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{credits: map[int64]int{}}
}

func (s *fakeStore) set(id int64, credit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits[id] = credit
}

func (s *fakeStore) balance(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits[id]
}

func (s *fakeStore) FindByTelegramID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	credit, ok := s.credits[id]
	if !ok {
		return nil, nil
	}
	return &models.User{TelegramID: id, Credit: credit}, nil
}

func (s *fakeStore) Create(ctx context.Context, id int64, credit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credits[id]; ok {
		return false, nil
	}
	s.credits[id] = credit
	return true, nil
}

func (s *fakeStore) Debit(ctx context.Context, id int64, threshold, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credits[id] < threshold {
		return false, nil
	}
	s.credits[id] -= amount
	return true, nil
}

func (s *fakeStore) Grant(ctx context.Context, id int64, amount int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credit, ok := s.credits[id]
	if !ok {
		return nil, nil
	}
	s.credits[id] = credit + amount
	return &models.User{TelegramID: id, Credit: credit + amount}, nil
}

func (s *fakeStore) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.credits))
	for id := range s.credits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeUsage struct {
	mu      sync.Mutex
	records []models.UsageRecord
}

func (u *fakeUsage) Log(ctx context.Context, record models.UsageRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, record)
	return nil
}

func (u *fakeUsage) all() []models.UsageRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]models.UsageRecord(nil), u.records...)
}

type fakeCompleter struct {
	mu         sync.Mutex
	chat       openai.Result
	image      openai.Result
	chatCalls  []openai.ChatRequest
	imageCalls []string
}

func (c *fakeCompleter) Complete(ctx context.Context, req openai.ChatRequest) openai.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatCalls = append(c.chatCalls, req)
	return c.chat
}

func (c *fakeCompleter) GenerateImage(ctx context.Context, prompt string) openai.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imageCalls = append(c.imageCalls, prompt)
	return c.image
}

func (c *fakeCompleter) calls() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chatCalls), len(c.imageCalls)
}

type fakeActivity struct {
	mu      sync.Mutex
	actions []models.Activity
}

func (a *fakeActivity) SendChatAction(ctx context.Context, chatID int64, activity models.Activity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, activity)
	return nil
}

type fakeArchiver struct {
	url string
	err error
}

func (a *fakeArchiver) Archive(ctx context.Context, sourceURL string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.url, nil
}

var errStoreDown = errors.New("store down")

type harness struct {
	store    *fakeStore
	usage    *fakeUsage
	ai       *fakeCompleter
	activity *fakeActivity
	archiver *fakeArchiver
	d        *Dispatcher
}

func newHarness() *harness {
	h := &harness{
		store:    newFakeStore(),
		usage:    &fakeUsage{},
		ai:       &fakeCompleter{},
		activity: &fakeActivity{},
		archiver: &fakeArchiver{url: "https://cdn.example/archived.png"},
	}
	log := discardLogger()
	users := NewUserService(h.store, 10)
	metering := NewMeteringService(log, h.store, h.usage, h.archiver)
	h.d = NewDispatcher(log, users, metering, h.ai, h.activity, "")
	return h
}

func textMessage(from int64, text string) models.InboundMessage {
	return models.InboundMessage{
		MessageID: 100,
		ChatID:    from,
		From:      models.Sender{ID: from, FirstName: "Ada", LastName: "Lovelace"},
		Kind:      models.KindText,
		Text:      text,
	}
}
