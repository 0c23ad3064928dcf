//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/internal/testutil"
)

func TestIntegrationUser_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t)
	created, err := repo.GetOrCreateUser(ctx, user)
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}

	again := *user
	again.ID = "01J00000000000000000000000"
	again.Name = "Someone Else"
	second, err := repo.GetOrCreateUser(ctx, &again)
	if err != nil {
		t.Fatalf("second GetOrCreateUser: %v", err)
	}
	if second.ID != created.ID {
		t.Errorf("second login ID = %s, want %s", second.ID, created.ID)
	}
	if second.Name != user.Name {
		t.Errorf("Name = %q, want stored name %q", second.Name, user.Name)
	}
}

func TestIntegrationUser_ConcurrentGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	base := testutil.NewTestUser(t)

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := *base
			u.ID = testutil.NewTestUser(t).ID
			got, err := repo.GetOrCreateUser(ctx, &u)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			ids[i] = got.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got ID %s, worker 0 got %s", i, ids[i], ids[0])
		}
	}
}

func TestIntegrationUser_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByEmail error = %v, want ErrUserNotFound", err)
	}
}

func TestIntegrationScraped_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	user := createUser(t, ctx, repo)

	rec := testutil.NewTestScrapedRecord(t, user.ID)
	if err := repo.CreateScrapedRecord(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetScrapedRecord(ctx, rec.ID, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.URL != rec.URL || got.Content != rec.Content {
		t.Errorf("got %+v, want %+v", got, rec)
	}
	if got.Metadata.Title() != "Example Domain" {
		t.Errorf("Title = %q, want Example Domain", got.Metadata.Title())
	}

	got.Content = "edited"
	got.Metadata[model.MetaTitle] = "Edited Title"
	if err := repo.UpdateScrapedRecord(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := repo.ListScrapedRecords(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list len = %d, want 1", len(list))
	}
	if list[0].Content != "edited" || list[0].Metadata.Title() != "Edited Title" {
		t.Errorf("update not persisted: %+v", list[0])
	}

	if err := repo.DeleteScrapedRecord(ctx, rec.ID, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetScrapedRecord(ctx, rec.ID, user.ID); !errors.Is(err, ErrScrapedRecordNotFound) {
		t.Errorf("get after delete error = %v, want ErrScrapedRecordNotFound", err)
	}
}

func TestIntegrationScraped_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	owner := createUser(t, ctx, repo)
	other := createUser(t, ctx, repo)

	rec := testutil.NewTestScrapedRecord(t, owner.ID)
	if err := repo.CreateScrapedRecord(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.GetScrapedRecord(ctx, rec.ID, other.ID); !errors.Is(err, ErrScrapedRecordNotFound) {
		t.Errorf("get by other user error = %v, want ErrScrapedRecordNotFound", err)
	}

	hijack := *rec
	hijack.UserID = other.ID
	hijack.Content = "hijacked"
	if err := repo.UpdateScrapedRecord(ctx, &hijack); !errors.Is(err, ErrScrapedRecordNotFound) {
		t.Errorf("update by other user error = %v, want ErrScrapedRecordNotFound", err)
	}
	if err := repo.DeleteScrapedRecord(ctx, rec.ID, other.ID); !errors.Is(err, ErrScrapedRecordNotFound) {
		t.Errorf("delete by other user error = %v, want ErrScrapedRecordNotFound", err)
	}

	list, err := repo.ListScrapedRecords(ctx, other.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other user sees %d records, want 0", len(list))
	}

	still, err := repo.GetScrapedRecord(ctx, rec.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if still.Content != rec.Content {
		t.Errorf("content changed to %q", still.Content)
	}
}

func TestIntegrationPromptLog_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	user := createUser(t, ctx, repo)
	other := createUser(t, ctx, repo)

	log := testutil.NewTestPromptLog(t, user.ID)
	if err := repo.CreatePromptLog(ctx, log); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.GetPromptLog(ctx, log.ID, other.ID); !errors.Is(err, ErrPromptLogNotFound) {
		t.Errorf("get by other user error = %v, want ErrPromptLogNotFound", err)
	}

	log.GeneratedOutput = "edited output"
	if err := repo.UpdatePromptLog(ctx, log); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetPromptLog(ctx, log.ID, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GeneratedOutput != "edited output" {
		t.Errorf("GeneratedOutput = %q, want edited output", got.GeneratedOutput)
	}

	if err := repo.DeletePromptLog(ctx, log.ID, other.ID); !errors.Is(err, ErrPromptLogNotFound) {
		t.Errorf("delete by other user error = %v, want ErrPromptLogNotFound", err)
	}
	if err := repo.DeletePromptLog(ctx, log.ID, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := repo.ListPromptLogs(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list len = %d, want 0", len(list))
	}
}

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	repo, err := New(ctx, dbURL, PoolConfig{MaxConns: 4, MinConns: 1, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, dbURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

func createUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
