package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/service"
)

var testUser = &model.User{ID: "01HZX3M5N0ACCT000000000000", Name: "Ada", Email: "ada@example.com", Provider: model.ProviderGoogle}

// fakeScrapes implements ScrapeUseCase and RecordSummarizer over maps.
type fakeScrapes struct {
	records   map[string]*model.ScrapedRecord
	scrapeErr error
	nextID    string
	updated   *service.UpdateScrapedInput
	deleted   []string
}

func newFakeScrapes(records ...*model.ScrapedRecord) *fakeScrapes {
	f := &fakeScrapes{records: make(map[string]*model.ScrapedRecord), nextID: "01HZX3M5N0REC0000000000000"}
	for _, rec := range records {
		f.records[rec.ID] = rec
	}
	return f
}

func (f *fakeScrapes) Scrape(_ context.Context, userID, rawURL string) (*model.ScrapedRecord, error) {
	if f.scrapeErr != nil {
		return nil, f.scrapeErr
	}
	rec := &model.ScrapedRecord{
		ID:       f.nextID,
		URL:      rawURL,
		Content:  "Example Domain",
		Metadata: model.Metadata{model.MetaTitle: "Example Domain"},
		UserID:   userID,
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeScrapes) List(_ context.Context, userID string) ([]*model.ScrapedRecord, error) {
	var out []*model.ScrapedRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeScrapes) Get(_ context.Context, userID, id string) (*model.ScrapedRecord, error) {
	rec, ok := f.records[id]
	if !ok || rec.UserID != userID {
		return nil, service.ErrScrapedRecordNotFound
	}
	return rec, nil
}

func (f *fakeScrapes) Update(ctx context.Context, userID, id string, input service.UpdateScrapedInput) (*model.ScrapedRecord, error) {
	rec, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	f.updated = &input
	rec.URL = input.URL
	rec.Content = input.Content
	return rec, nil
}

func (f *fakeScrapes) Delete(ctx context.Context, userID, id string) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakePrompts implements PromptUseCase over maps.
type fakePrompts struct {
	logs      map[string]*model.PromptLog
	err       error
	nextID    string
	generated []string
	records   map[string]bool
}

func newFakePrompts(logs ...*model.PromptLog) *fakePrompts {
	f := &fakePrompts{
		logs:    make(map[string]*model.PromptLog),
		nextID:  "01HZX3M5N0PRM0000000000000",
		records: make(map[string]bool),
	}
	for _, log := range logs {
		f.logs[log.ID] = log
	}
	return f
}

func (f *fakePrompts) Generate(_ context.Context, userID, promptText string) (*model.PromptLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(promptText) == "" {
		return nil, service.ErrPromptRequired
	}
	f.generated = append(f.generated, promptText)
	log := &model.PromptLog{ID: f.nextID, PromptText: promptText, GeneratedOutput: "summary of " + promptText, UserID: userID}
	f.logs[log.ID] = log
	return log, nil
}

func (f *fakePrompts) SummarizeRecord(ctx context.Context, userID, recordID string) (*model.PromptLog, error) {
	if !f.records[recordID] {
		return nil, service.ErrScrapedRecordNotFound
	}
	return f.Generate(ctx, userID, "record "+recordID)
}

func (f *fakePrompts) List(_ context.Context, userID string) ([]*model.PromptLog, error) {
	var out []*model.PromptLog
	for _, log := range f.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (f *fakePrompts) Get(_ context.Context, userID, id string) (*model.PromptLog, error) {
	log, ok := f.logs[id]
	if !ok || log.UserID != userID {
		return nil, service.ErrPromptLogNotFound
	}
	return log, nil
}

func (f *fakePrompts) Update(ctx context.Context, userID, id string, input service.UpdatePromptLogInput) (*model.PromptLog, error) {
	if strings.TrimSpace(input.PromptText) == "" {
		return nil, service.ErrPromptRequired
	}
	if strings.TrimSpace(input.GeneratedOutput) == "" {
		return nil, service.ErrOutputRequired
	}
	log, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	log.PromptText = input.PromptText
	log.GeneratedOutput = input.GeneratedOutput
	return log, nil
}

func (f *fakePrompts) Delete(ctx context.Context, userID, id string) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.logs, id)
	return nil
}

// formRequest builds a signed-in form POST.
func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withUser(req, testUser)
}

func withUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(auth.ContextWithUser(req.Context(), user))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func mustPages() *Pages {
	pages, err := NewPages()
	if err != nil {
		panic(err)
	}
	return pages
}
