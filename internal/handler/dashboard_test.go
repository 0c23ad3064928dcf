package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagescribe/pagescribe/internal/handler/dto"
	"github.com/pagescribe/pagescribe/internal/model"
)

func dashboardFixture() (*fakeScrapes, *fakePrompts) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	scrapes := newFakeScrapes(
		&model.ScrapedRecord{
			ID:        "01HZX3M5N0REC0000000000001",
			URL:       "http://example.com",
			Content:   "Example Domain <script>alert(1)</script>",
			Metadata:  model.Metadata{model.MetaTitle: "Example Domain"},
			UserID:    testUser.ID,
			CreatedAt: created,
		},
		&model.ScrapedRecord{
			ID:       "01HZX3M5N0REC0000000000002",
			URL:      "http://other.example",
			Content:  "someone else's page",
			Metadata: model.Metadata{model.MetaTitle: "Not Yours"},
			UserID:   "someone-else",
		},
	)
	prompts := newFakePrompts(&model.PromptLog{
		ID:              "01HZX3M5N0PRM0000000000001",
		PromptText:      "Example Domain text",
		GeneratedOutput: "A placeholder page.",
		UserID:          testUser.ID,
		CreatedAt:       created,
	})
	return scrapes, prompts
}

func TestDashboardHandler_HTML(t *testing.T) {
	t.Parallel()

	scrapes, prompts := dashboardFixture()
	h := NewDashboardHandler(scrapes, prompts, mustPages(), discardLogger())

	req := withUser(httptest.NewRequest(http.MethodGet, "/", nil), testUser)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Example Domain",
		"/scraped_data/edit/01HZX3M5N0REC0000000000001",
		"/prompt_log/delete/01HZX3M5N0PRM0000000000001",
		"A placeholder page.",
		"ada@example.com",
		"2024-05-01 12:00 UTC",
		`action="/scrape"`,
		`action="/generate_prompt_response"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(body, "Not Yours") {
		t.Error("dashboard shows another user's record")
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("scraped content must be escaped")
	}
}

func TestDashboardHandler_JSON(t *testing.T) {
	t.Parallel()

	scrapes, prompts := dashboardFixture()
	h := NewDashboardHandler(scrapes, prompts, mustPages(), discardLogger())

	req := withUser(httptest.NewRequest(http.MethodGet, "/", nil), testUser)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp dto.DashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.ID != testUser.ID {
		t.Errorf("user = %s", resp.User.ID)
	}
	if len(resp.ScrapedData) != 1 || resp.ScrapedData[0].Title != "Example Domain" {
		t.Errorf("scraped_data = %+v", resp.ScrapedData)
	}
	if len(resp.PromptLogs) != 1 || resp.PromptLogs[0].GeneratedOutput != "A placeholder page." {
		t.Errorf("prompt_logs = %+v", resp.PromptLogs)
	}
}

func TestDashboardHandler_Empty(t *testing.T) {
	t.Parallel()

	h := NewDashboardHandler(newFakeScrapes(), newFakePrompts(), mustPages(), discardLogger())

	req := withUser(httptest.NewRequest(http.MethodGet, "/", nil), testUser)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Nothing scraped yet.") {
		t.Error("empty state not rendered")
	}
}
