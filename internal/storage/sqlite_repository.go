package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/query"
)

const settingSelectedFilter = "selected_filter"

// SQLiteRepository persists task records as (uuid, JSON payload) rows,
// saved filters as (ulid, JSON payload) rows, and tag names. A single
// coordinating context is assumed to drive it at a time; there is no
// internal locking beyond what database/sql provides.
type SQLiteRepository struct {
	db             *sql.DB
	now            func() time.Time
	commitHook     func()
	malformedSkips atomic.Uint64
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// SetCommitHook registers a callback invoked after every committed task
// mutation. External presentation caches (widgets, summaries) hang off
// this boundary.
func (r *SQLiteRepository) SetCommitHook(fn func()) {
	r.commitHook = fn
}

func (r *SQLiteRepository) notifyCommit() {
	if r.commitHook != nil {
		r.commitHook()
	}
}

// MalformedSkips reports how many records have been dropped from bulk
// reads because their payload failed to decode.
func (r *SQLiteRepository) MalformedSkips() uint64 {
	return r.malformedSkips.Load()
}

// GetPendingTasks returns every record whose payload marks it pending.
// Records that fail to decode are skipped, not surfaced; bulk reads are
// best effort.
func (r *SQLiteRepository) GetPendingTasks(ctx context.Context, sorted bool) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT uuid, data FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		var key string
		var data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}
		task, decodeErr := decodeTask(key, []byte(data))
		if decodeErr != nil {
			r.malformedSkips.Add(1)
			continue
		}
		if task.Status != model.StatusPending {
			continue
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if sorted {
		query.SortTasks(out)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, key string) (model.Task, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM tasks WHERE uuid = ?`, normalizeUUID(key)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return decodeTask(normalizeUUID(key), []byte(data))
}

// CreateTask inserts a new record, minting a uuid when the draft carries
// none. Both entry and modified stamps are set to now. Insert semantics:
// an existing record with the same key is an error, never an upsert.
func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	if in.UUID == "" {
		in.UUID = uuid.NewString()
	}
	in.UUID = normalizeUUID(in.UUID)
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}

	fields, err := encodeTask(in)
	if err != nil {
		return model.Task{}, err
	}
	now := r.now()
	fields[keyEntry] = epochString(now)
	fields[keyModified] = epochString(now)
	if in.Note != "" {
		raw, _ := json.Marshal(taskNotePrefix + in.Note)
		fields[annotationKey(now)] = raw
	}
	payload, err := encodePayload(fields)
	if err != nil {
		return model.Task{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (uuid, data) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM tasks WHERE uuid = ?)`,
		in.UUID, string(payload), in.UUID)
	if err != nil {
		return model.Task{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Task{}, err
	}
	if affected == 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrAlreadyExists, in.UUID)
	}
	r.notifyCommit()
	return in, nil
}

// UpdateTask merges the incoming task over the stored payload: incoming
// keys overwrite, stored keys the incoming encoding does not carry are
// preserved. Only the modified stamp is refreshed.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	in.UUID = normalizeUUID(in.UUID)
	incoming, err := encodeTask(in)
	if err != nil {
		return err
	}
	incoming[keyModified] = epochString(r.now())

	if err := r.mergeRow(ctx, in.UUID, incoming); err != nil {
		return err
	}
	r.notifyCommit()
	return nil
}

// UpdatePendingTasks sets a new status on every listed record that is
// currently pending. Each row goes through the decode/merge/encode path;
// the payload is never mutated by raw text substitution.
func (r *SQLiteRepository) UpdatePendingTasks(ctx context.Context, uuids []string, status model.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	changed := false
	for _, key := range uuids {
		key = normalizeUUID(key)
		var data string
		err := r.db.QueryRowContext(ctx, `SELECT data FROM tasks WHERE uuid = ?`, key).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		fields, err := decodePayload([]byte(data))
		if err != nil {
			r.malformedSkips.Add(1)
			continue
		}
		if !statusIs(fields, model.StatusPending) {
			continue
		}
		raw, _ := json.Marshal(string(status))
		if err := r.mergeRow(ctx, key, map[string]json.RawMessage{
			keyStatus:   raw,
			keyModified: epochString(r.now()),
		}); err != nil {
			return err
		}
		changed = true
	}
	if changed {
		r.notifyCommit()
	}
	return nil
}

// TogglePendingTasksStatus flips pending records to completed and
// completed records back to pending. Deleted records are left alone.
func (r *SQLiteRepository) TogglePendingTasksStatus(ctx context.Context, uuids []string) error {
	for _, key := range uuids {
		key = normalizeUUID(key)
		task, err := r.GetTask(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		switch task.Status {
		case model.StatusPending:
			task.Status = model.StatusCompleted
		case model.StatusCompleted:
			task.Status = model.StatusPending
		default:
			continue
		}
		// UpdateTask runs the merge path and fires the commit hook.
		if err := r.UpdateTask(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// AddAnnotation attaches a free-text annotation under a timestamped key.
// The note back-reference uses the "task-note: " value convention.
func (r *SQLiteRepository) AddAnnotation(ctx context.Context, key, text string) error {
	raw, err := json.Marshal(text)
	if err != nil {
		return err
	}
	now := r.now()
	if err := r.mergeRow(ctx, normalizeUUID(key), map[string]json.RawMessage{
		annotationKey(now): raw,
		keyModified:        epochString(now),
	}); err != nil {
		return err
	}
	r.notifyCommit()
	return nil
}

// NoteAnnotation formats the annotation text carrying an external note
// back-reference.
func NoteAnnotation(name string) string {
	return taskNotePrefix + name
}

func (r *SQLiteRepository) mergeRow(ctx context.Context, key string, incoming map[string]json.RawMessage) error {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM tasks WHERE uuid = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	existing, err := decodePayload([]byte(data))
	if err != nil {
		return err
	}
	merged, err := encodePayload(mergePayload(existing, incoming))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE tasks SET data = ? WHERE uuid = ?`, string(merged), key)
	return err
}

func statusIs(fields map[string]json.RawMessage, want model.Status) bool {
	raw, ok := fields[keyStatus]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return model.Status(s) == want
}

func normalizeUUID(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

var _ TaskRepository = (*SQLiteRepository)(nil)
var _ FilterRepository = (*SQLiteRepository)(nil)
var _ TagRepository = (*SQLiteRepository)(nil)

type filterPayload struct {
	Project         string   `json:"project,omitempty"`
	Status          string   `json:"status,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	Due             *int64   `json:"due,omitempty"`
	DidSetProject   bool     `json:"did_set_project"`
	DidSetStatus    bool     `json:"did_set_status"`
	DidSetPriority  bool     `json:"did_set_priority"`
	DidSetDue       bool     `json:"did_set_due"`
	IncludedTags    []string `json:"included_tags,omitempty"`
	ExcludedTags    []string `json:"excluded_tags,omitempty"`
	FullDescription string   `json:"full_description"`
}

func encodeFilter(f model.Filter) ([]byte, error) {
	p := filterPayload{
		Project:         f.Project,
		Status:          string(f.Status),
		Priority:        string(f.Priority),
		DidSetProject:   f.DidSetProject,
		DidSetStatus:    f.DidSetStatus,
		DidSetPriority:  f.DidSetPriority,
		DidSetDue:       f.DidSetDue,
		IncludedTags:    f.IncludedTags,
		ExcludedTags:    f.ExcludedTags,
		FullDescription: f.FullDescription,
	}
	if f.Due != nil {
		secs := f.Due.Unix()
		p.Due = &secs
	}
	return json.Marshal(p)
}

func decodeFilter(data []byte) (model.Filter, error) {
	var p filterPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Filter{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	f := model.Filter{
		Project:         p.Project,
		Status:          model.Status(p.Status),
		Priority:        model.Priority(p.Priority),
		DidSetProject:   p.DidSetProject,
		DidSetStatus:    p.DidSetStatus,
		DidSetPriority:  p.DidSetPriority,
		DidSetDue:       p.DidSetDue,
		IncludedTags:    p.IncludedTags,
		ExcludedTags:    p.ExcludedTags,
		FullDescription: p.FullDescription,
	}
	if p.Due != nil {
		at := time.Unix(*p.Due, 0).UTC()
		f.Due = &at
	}
	return f, nil
}

// SaveFilter persists a filter under a generated id. Invalid filters
// (nothing explicitly set) are refused; they would match nothing.
func (r *SQLiteRepository) SaveFilter(ctx context.Context, f model.Filter) (SavedFilter, error) {
	if !f.IsValid() {
		return SavedFilter{}, errors.New("storage: refusing to save filter with no fields set")
	}
	payload, err := encodeFilter(f)
	if err != nil {
		return SavedFilter{}, err
	}
	id := ulid.Make().String()
	if _, err := r.db.ExecContext(ctx, `INSERT INTO filters (id, data) VALUES (?, ?)`, id, string(payload)); err != nil {
		return SavedFilter{}, err
	}
	return SavedFilter{ID: id, Filter: f}, nil
}

func (r *SQLiteRepository) ListFilters(ctx context.Context) ([]SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM filters ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SavedFilter, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		f, decodeErr := decodeFilter([]byte(data))
		if decodeErr != nil {
			continue
		}
		out = append(out, SavedFilter{ID: id, Filter: f})
	}
	return out, rows.Err()
}

// DeleteFilter removes a saved filter. If it was the selected one the
// selection falls back to the built-in default.
func (r *SQLiteRepository) DeleteFilter(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM filters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	selected, ok, err := r.getSetting(ctx, settingSelectedFilter)
	if err != nil {
		return err
	}
	if ok && selected == id {
		_, err = r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, settingSelectedFilter)
	}
	return err
}

func (r *SQLiteRepository) SelectFilter(ctx context.Context, id string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM filters WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return r.setSetting(ctx, settingSelectedFilter, id)
}

// SelectedFilter returns the currently selected saved filter, or the
// built-in "all pending" default when none is selected or the selected
// one no longer exists.
func (r *SQLiteRepository) SelectedFilter(ctx context.Context) (SavedFilter, error) {
	id, ok, err := r.getSetting(ctx, settingSelectedFilter)
	if err != nil {
		return SavedFilter{}, err
	}
	if !ok {
		return SavedFilter{Filter: model.DefaultFilter()}, nil
	}
	var data string
	err = r.db.QueryRowContext(ctx, `SELECT data FROM filters WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedFilter{Filter: model.DefaultFilter()}, nil
	}
	if err != nil {
		return SavedFilter{}, err
	}
	f, err := decodeFilter([]byte(data))
	if err != nil {
		return SavedFilter{Filter: model.DefaultFilter()}, nil
	}
	return SavedFilter{ID: id, Filter: f}, nil
}

// EnsureTag returns the stored tag for name, creating it when absent.
func (r *SQLiteRepository) EnsureTag(ctx context.Context, name string) (model.Tag, error) {
	tag := model.Tag{Name: name}
	if err := tag.Validate(); err != nil {
		return model.Tag{}, err
	}
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}

func (r *SQLiteRepository) GetTag(ctx context.Context, name string) (model.Tag, error) {
	var got string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM tags WHERE name = ?`, name).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, ErrNotFound
	}
	if err != nil {
		return model.Tag{}, err
	}
	return model.Tag{Name: got}, nil
}

func (r *SQLiteRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Tag, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, model.Tag{Name: name})
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) getSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SQLiteRepository) setSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}
