// Package notify keeps the short-lived notification list shown on the
// dashboard. Entries expire after a fixed age; Run prunes them.
package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// List is safe for concurrent use.
type List struct {
	mu     sync.Mutex
	items  []Notification
	maxAge time.Duration
	max    int
	now    func() time.Time
}

// DefaultCapacity bounds the list when nobody prunes it.
const DefaultCapacity = 200

func NewList(maxAge time.Duration) *List {
	return &List{
		maxAge: maxAge,
		max:    DefaultCapacity,
		now:    time.Now,
	}
}

// Push appends a notification and returns it. The oldest entry is dropped
// once the list is at capacity.
func (l *List) Push(level Level, title, message string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: message,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	n.CreatedAt = l.now()
	l.items = append(l.items, n)
	if over := len(l.items) - l.max; over > 0 {
		l.items = append(l.items[:0:0], l.items[over:]...)
	}
	return n
}

// Items returns unexpired notifications, newest first.
func (l *List) Items() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.maxAge)
	out := make([]Notification, 0, len(l.items))
	for _, n := range l.items {
		if n.CreatedAt.After(cutoff) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Dismiss removes the notification with id and reports whether it existed.
func (l *List) Dismiss(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, n := range l.items {
		if n.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Prune drops expired entries and returns how many were removed.
func (l *List) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.maxAge)
	kept := l.items[:0]
	for _, n := range l.items {
		if n.CreatedAt.After(cutoff) {
			kept = append(kept, n)
		}
	}
	removed := len(l.items) - len(kept)
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = Notification{}
	}
	l.items = kept
	return removed
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Run prunes every interval until ctx is done.
func (l *List) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Prune()
		}
	}
}
