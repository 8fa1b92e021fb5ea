// Package alert turns due stamps on pending tasks into timed events. The
// engine keeps a min-heap ordered by fire time and a single timer
// goroutine; the TUI drains the event channel.
package alert

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/taskvault/internal/model"
)

var ErrInvalidFireTime = errors.New("alert: invalid fire time")

type Kind string

const (
	KindDue      Kind = "due"
	KindCritical Kind = "critical"
)

// Event is one fired alert. UUID identifies the task; Kind is critical
// when the task carries an enabled critical-alert setting.
type Event struct {
	UUID        string
	Description string
	Kind        Kind
	FireAt      time.Time
}

type queueItem struct {
	event Event
}

type alertQueue []queueItem

func (q alertQueue) Len() int           { return len(q) }
func (q alertQueue) Less(i, j int) bool { return q[i].event.FireAt.Before(q[j].event.FireAt) }
func (q alertQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *alertQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *alertQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

type Engine struct {
	mu      sync.Mutex
	queue   alertQueue
	byUUID  map[string]time.Time
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(alertQueue, 0),
		byUUID: make(map[string]time.Time),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// ScheduleTask queues an alert for the task's due stamp. Tasks without a
// due date, or not pending, are ignored. Rescheduling the same task moves
// its alert; the stale heap entry is discarded at fire time.
func (e *Engine) ScheduleTask(task model.Task) error {
	if task.Due == nil || task.Status != model.StatusPending {
		return nil
	}
	kind := KindDue
	if task.CriticalAlert != nil && task.CriticalAlert.Enabled {
		kind = KindCritical
	}
	return e.schedule(Event{
		UUID:        task.UUID,
		Description: task.Description,
		Kind:        kind,
		FireAt:      *task.Due,
	})
}

// Cancel drops any queued alert for the task.
func (e *Engine) Cancel(uuid string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.byUUID, uuid)
}

func (e *Engine) schedule(ev Event) error {
	if ev.FireAt.IsZero() {
		return ErrInvalidFireTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("alert: engine stopped")
	}

	e.byUUID[ev.UUID] = ev.FireAt
	heap.Push(&e.queue, queueItem{event: ev})
	e.signalWakeup()
	return nil
}

// Dropped counts events discarded because the channel was full.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Event{}, false
	}
	return e.queue[0].event, true
}

// popDue removes all entries at or before now, skipping entries whose
// task was cancelled or rescheduled after they were queued.
func (e *Engine) popDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Event, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].event
		if next.FireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		current, ok := e.byUUID[item.event.UUID]
		if !ok || !current.Equal(item.event.FireAt) {
			continue
		}
		delete(e.byUUID, item.event.UUID)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
