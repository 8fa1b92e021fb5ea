package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/taskvault/internal/model"
)

// Reserved payload keys. Everything else in a payload (notably the
// annotation_<epoch> keys) is opaque to the codec and rides through
// merge updates untouched.
const (
	keyProject          = "project"
	keyDescription      = "description"
	keyStatus           = "status"
	keyPriority         = "priority"
	keyDue              = "due"
	keyTags             = "tags"
	keyLocationReminder = "location_reminder"
	keyCriticalAlert    = "critical_alert"
	keyEntry            = "entry"
	keyModified         = "modified"

	annotationPrefix = "annotation_"
	taskNotePrefix   = "task-note: "
)

type locationReminderPayload struct {
	Name               string  `json:"name"`
	Latitude           float64 `json:"lat"`
	Longitude          float64 `json:"lon"`
	Radius             float64 `json:"radius"`
	TriggerOnArrival   bool    `json:"trigger_on_arrival"`
	TriggerOnDeparture bool    `json:"trigger_on_departure"`
}

type criticalAlertPayload struct {
	Enabled      bool    `json:"enabled"`
	VolumePreset string  `json:"volume_preset"`
	CustomVolume float64 `json:"custom_volume"`
}

// encodeTask renders the task's reserved fields as a payload map. The
// uuid is deliberately absent: it lives in the row key and is injected
// back at decode time. The note back-reference is not encoded either; it
// is persisted as an annotation key.
func encodeTask(t model.Task) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, 8)

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = raw
		return nil
	}

	if err := put(keyDescription, t.Description); err != nil {
		return nil, err
	}
	if err := put(keyStatus, string(t.Status)); err != nil {
		return nil, err
	}
	if t.Project != "" {
		if err := put(keyProject, t.Project); err != nil {
			return nil, err
		}
	}
	if t.Priority != model.PriorityNone {
		if err := put(keyPriority, string(t.Priority)); err != nil {
			return nil, err
		}
	}
	if t.Due != nil {
		if err := put(keyDue, strconv.FormatInt(t.Due.Unix(), 10)); err != nil {
			return nil, err
		}
	}
	if len(t.Tags) > 0 {
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, tag.Name)
		}
		if err := put(keyTags, names); err != nil {
			return nil, err
		}
	}
	if t.LocationReminder != nil {
		r := t.LocationReminder
		if err := put(keyLocationReminder, locationReminderPayload{
			Name:               r.Name,
			Latitude:           r.Latitude,
			Longitude:          r.Longitude,
			Radius:             r.Radius,
			TriggerOnArrival:   r.TriggerOnArrival,
			TriggerOnDeparture: r.TriggerOnDeparture,
		}); err != nil {
			return nil, err
		}
	}
	if t.CriticalAlert != nil {
		a := t.CriticalAlert.Normalize()
		if err := put(keyCriticalAlert, criticalAlertPayload{
			Enabled:      a.Enabled,
			VolumePreset: string(a.VolumePreset),
			CustomVolume: a.CustomVolume,
		}); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// decodeTask rebuilds a task from its payload, injecting the uuid from
// the row key. Unknown keys are ignored here; they matter only to the
// merge path, which works on the raw map.
func decodeTask(uuid string, data []byte) (model.Task, error) {
	fields, err := decodePayload(data)
	if err != nil {
		return model.Task{}, err
	}

	task := model.Task{UUID: uuid}

	if raw, ok := fields[keyDescription]; ok {
		if err := json.Unmarshal(raw, &task.Description); err != nil {
			return model.Task{}, fmt.Errorf("%w: description: %v", ErrMalformedPayload, err)
		}
	}
	var status string
	if raw, ok := fields[keyStatus]; ok {
		if err := json.Unmarshal(raw, &status); err != nil {
			return model.Task{}, fmt.Errorf("%w: status: %v", ErrMalformedPayload, err)
		}
	}
	task.Status = model.Status(status)
	if !task.Status.IsValid() {
		return model.Task{}, fmt.Errorf("%w: status %q", ErrMalformedPayload, status)
	}

	if raw, ok := fields[keyProject]; ok {
		if err := json.Unmarshal(raw, &task.Project); err != nil {
			return model.Task{}, fmt.Errorf("%w: project: %v", ErrMalformedPayload, err)
		}
	}
	if raw, ok := fields[keyPriority]; ok {
		var p string
		if err := json.Unmarshal(raw, &p); err != nil {
			return model.Task{}, fmt.Errorf("%w: priority: %v", ErrMalformedPayload, err)
		}
		task.Priority = model.Priority(p)
	}
	if raw, ok := fields[keyDue]; ok {
		var due string
		if err := json.Unmarshal(raw, &due); err != nil {
			return model.Task{}, fmt.Errorf("%w: due: %v", ErrMalformedPayload, err)
		}
		secs, err := strconv.ParseInt(due, 10, 64)
		if err != nil {
			return model.Task{}, fmt.Errorf("%w: due %q", ErrMalformedPayload, due)
		}
		at := time.Unix(secs, 0).UTC()
		task.Due = &at
	}
	if raw, ok := fields[keyTags]; ok {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return model.Task{}, fmt.Errorf("%w: tags: %v", ErrMalformedPayload, err)
		}
		for _, name := range names {
			task.AddTag(model.Tag{Name: name})
		}
	}
	if raw, ok := fields[keyLocationReminder]; ok {
		var r locationReminderPayload
		if err := json.Unmarshal(raw, &r); err != nil {
			return model.Task{}, fmt.Errorf("%w: location reminder: %v", ErrMalformedPayload, err)
		}
		task.LocationReminder = &model.LocationReminder{
			Name:               r.Name,
			Latitude:           r.Latitude,
			Longitude:          r.Longitude,
			Radius:             r.Radius,
			TriggerOnArrival:   r.TriggerOnArrival,
			TriggerOnDeparture: r.TriggerOnDeparture,
		}
	}
	if raw, ok := fields[keyCriticalAlert]; ok {
		var a criticalAlertPayload
		if err := json.Unmarshal(raw, &a); err != nil {
			return model.Task{}, fmt.Errorf("%w: critical alert: %v", ErrMalformedPayload, err)
		}
		task.CriticalAlert = &model.CriticalAlert{
			Enabled:      a.Enabled,
			VolumePreset: model.VolumePreset(a.VolumePreset),
			CustomVolume: a.CustomVolume,
		}
	}

	// The note back-reference lives inside an annotation value.
	for key, raw := range fields {
		if !strings.HasPrefix(key, annotationPrefix) {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			continue
		}
		if strings.HasPrefix(text, taskNotePrefix) {
			task.Note = strings.TrimPrefix(text, taskNotePrefix)
		}
	}

	return task, nil
}

func decodePayload(data []byte) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return fields, nil
}

func encodePayload(fields map[string]json.RawMessage) ([]byte, error) {
	return json.Marshal(fields)
}

// mergePayload overlays incoming keys onto the existing payload: incoming
// values win, existing keys absent from incoming survive. This is what
// lets a partial task representation update a record without clobbering
// annotation keys it never carried.
func mergePayload(existing, incoming map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

func epochString(at time.Time) json.RawMessage {
	raw, _ := json.Marshal(strconv.FormatInt(at.Unix(), 10))
	return raw
}

func annotationKey(at time.Time) string {
	return annotationPrefix + strconv.FormatInt(at.Unix(), 10)
}
