package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/taskvault/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskvault-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTask(ctx, model.Task{Description: "Buy milk", Status: model.StatusPending})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.UUID == "" {
		t.Fatal("expected a minted uuid")
	}
	if created.UUID != strings.ToLower(created.UUID) {
		t.Fatalf("uuid not lowercase-normalized: %q", created.UUID)
	}

	got, err := repo.GetTask(ctx, created.UUID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Description != "Buy milk" || got.Status != model.StatusPending {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if got.Project != "" || got.Priority != model.PriorityNone || got.Due != nil || len(got.Tags) != 0 {
		t.Fatalf("optional fields should be unset: %#v", got)
	}
}

func TestCreateTaskInsertSemantics(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	task := model.Task{UUID: "AAAA-BBBB", Description: "first", Status: model.StatusPending}
	if _, err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same key after lowercase normalization.
	_, err := repo.CreateTask(ctx, model.Task{UUID: "aaaa-bbbb", Description: "second", Status: model.StatusPending})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got: %v", err)
	}

	got, err := repo.GetTask(ctx, "aaaa-bbbb")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "first" {
		t.Fatalf("existing record clobbered: %#v", got)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.GetTask(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestGetTaskMalformedPayloadSurfaces(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	mustExec(t, repo, `INSERT INTO tasks (uuid, data) VALUES ('bad-row', 'not json at all')`)

	_, err := repo.GetTask(ctx, "bad-row")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got: %v", err)
	}
}

func TestUpdateTaskMergePreservesAnnotations(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTask(ctx, model.Task{Description: "with note", Status: model.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.AddAnnotation(ctx, created.UUID, NoteAnnotation("meeting-notes")); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	created.Description = "with note, renamed"
	if err := repo.UpdateTask(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetTask(ctx, created.UUID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "with note, renamed" {
		t.Fatalf("update lost: %#v", got)
	}
	if got.Note != "meeting-notes" {
		t.Fatalf("annotation clobbered by merge: %#v", got)
	}

	// The raw payload still carries entry, modified and the annotation key.
	fields := rawPayload(t, repo, created.UUID)
	if _, ok := fields["entry"]; !ok {
		t.Fatal("entry stamp missing after update")
	}
	found := false
	for key := range fields {
		if strings.HasPrefix(key, "annotation_") {
			found = true
		}
	}
	if !found {
		t.Fatalf("annotation key missing: %#v", fields)
	}
}

func TestGetPendingTasksSkipsMalformedAndNonPending(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateTask(ctx, model.Task{Description: "keep me", Status: model.StatusPending}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateTask(ctx, model.Task{Description: "done already", Status: model.StatusCompleted}); err != nil {
		t.Fatalf("create: %v", err)
	}
	mustExec(t, repo, `INSERT INTO tasks (uuid, data) VALUES ('broken', '{truncated')`)

	tasks, err := repo.GetPendingTasks(ctx, false)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "keep me" {
		t.Fatalf("unexpected pending set: %#v", tasks)
	}
	if repo.MalformedSkips() != 1 {
		t.Fatalf("malformed skips = %d, want 1", repo.MalformedSkips())
	}
}

func TestGetPendingTasksSorted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, err := repo.CreateTask(ctx, model.Task{Description: "undated low", Status: model.StatusPending, Priority: model.PriorityLow}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateTask(ctx, model.Task{Description: "dated", Status: model.StatusPending, Due: &due}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateTask(ctx, model.Task{Description: "undated high", Status: model.StatusPending, Priority: model.PriorityHigh}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := repo.GetPendingTasks(ctx, true)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Description != "dated" || tasks[1].Description != "undated high" || tasks[2].Description != "undated low" {
		t.Fatalf("unexpected order: %q %q %q", tasks[0].Description, tasks[1].Description, tasks[2].Description)
	}
}

func TestUpdatePendingTasksBulkStatus(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// The description deliberately contains the word "pending"; the
	// decode/merge path must only touch the status field, unlike a raw
	// text substitution would.
	a, err := repo.CreateTask(ctx, model.Task{Description: "review pending invoices", Status: model.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.CreateTask(ctx, model.Task{Description: "already done", Status: model.StatusCompleted})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdatePendingTasks(ctx, []string{a.UUID, b.UUID, "ghost"}, model.StatusDeleted); err != nil {
		t.Fatalf("bulk update: %v", err)
	}

	gotA, err := repo.GetTask(ctx, a.UUID)
	if err != nil {
		t.Fatalf("get a: %v", err)
	}
	if gotA.Status != model.StatusDeleted {
		t.Fatalf("a status = %q, want deleted", gotA.Status)
	}
	if gotA.Description != "review pending invoices" {
		t.Fatalf("description mangled by bulk update: %q", gotA.Description)
	}

	gotB, err := repo.GetTask(ctx, b.UUID)
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	if gotB.Status != model.StatusCompleted {
		t.Fatalf("non-pending record touched: %#v", gotB)
	}
}

func TestTogglePendingTasksStatus(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	pending, err := repo.CreateTask(ctx, model.Task{Description: "flip me", Status: model.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	done, err := repo.CreateTask(ctx, model.Task{Description: "restore me", Status: model.StatusCompleted})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gone, err := repo.CreateTask(ctx, model.Task{Description: "leave me", Status: model.StatusDeleted})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.TogglePendingTasksStatus(ctx, []string{pending.UUID, done.UUID, gone.UUID}); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	assertStatus(t, repo, pending.UUID, model.StatusCompleted)
	assertStatus(t, repo, done.UUID, model.StatusPending)
	assertStatus(t, repo, gone.UUID, model.StatusDeleted)
}

func TestCommitHookFiresOnMutations(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fired := 0
	repo.SetCommitHook(func() { fired++ })

	created, err := repo.CreateTask(ctx, model.Task{Description: "hooked", Status: model.StatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if fired != 1 {
		t.Fatalf("hook after create = %d, want 1", fired)
	}
	if err := repo.UpdateTask(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	if fired != 2 {
		t.Fatalf("hook after update = %d, want 2", fired)
	}
	if _, err := repo.GetTask(ctx, created.UUID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fired != 2 {
		t.Fatal("hook must not fire on reads")
	}
}

func TestUpdateTaskMissingRecord(t *testing.T) {
	repo := setupRepo(t)
	err := repo.UpdateTask(context.Background(), model.Task{UUID: "nope", Description: "x", Status: model.StatusPending})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestDuePersistsAsEpochSecondsString(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	created, err := repo.CreateTask(ctx, model.Task{Description: "dated", Status: model.StatusPending, Due: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fields := rawPayload(t, repo, created.UUID)
	var raw string
	if err := json.Unmarshal(fields["due"], &raw); err != nil {
		t.Fatalf("due not a JSON string: %v", err)
	}
	if raw != "1772355600" {
		t.Fatalf("due = %q, want epoch seconds string", raw)
	}

	got, err := repo.GetTask(ctx, created.UUID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Due == nil || !got.Due.Equal(due) {
		t.Fatalf("due round trip = %v, want %v", got.Due, due)
	}
}

func mustExec(t *testing.T, repo *SQLiteRepository, query string) {
	t.Helper()
	if _, err := repo.db.Exec(query); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func rawPayload(t *testing.T, repo *SQLiteRepository, key string) map[string]json.RawMessage {
	t.Helper()
	var data string
	if err := repo.db.QueryRow(`SELECT data FROM tasks WHERE uuid = ?`, key).Scan(&data); err != nil {
		t.Fatalf("raw payload: %v", err)
	}
	fields, err := decodePayload([]byte(data))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return fields
}

func assertStatus(t *testing.T, repo *SQLiteRepository, key string, want model.Status) {
	t.Helper()
	got, err := repo.GetTask(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	if got.Status != want {
		t.Fatalf("status of %s = %q, want %q", key, got.Status, want)
	}
}
