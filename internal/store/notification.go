package store

import (
	"sync"
	"time"
)

// maxNotifications caps the buffer; overflow truncates the tail.
const maxNotifications = 50

// Notification is a client-generated event. Not persisted: the buffer
// is lost on process exit, matching its advisory nature.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

// NotificationStore is an in-memory ring of recent notifications,
// newest first. Every operation is a total function.
type NotificationStore struct {
	mu    sync.Mutex
	seq   int64
	items []Notification
}

// NewNotificationStore creates an empty notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

// Add inserts a notification at the head and returns it. Ids come from
// a monotonic counter seeded at process start, so two notifications
// created in the same instant still get distinct ids.
func (s *NotificationStore) Add(title, message, ntype string) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	n := Notification{
		ID:        s.seq,
		Title:     title,
		Message:   message,
		Type:      ntype,
		CreatedAt: time.Now(),
	}

	s.items = append([]Notification{n}, s.items...)
	if len(s.items) > maxNotifications {
		s.items = s.items[:maxNotifications]
	}
	return n
}

// All returns the notifications, newest first.
func (s *NotificationStore) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead flags one notification as read. Unknown ids are ignored.
func (s *NotificationStore) MarkRead(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return
		}
	}
}

// MarkAllRead flags every notification as read.
func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
}

// Remove deletes one notification. Unknown ids are ignored.
func (s *NotificationStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ClearAll empties the buffer. The id counter keeps counting: ids are
// never reused within a process.
func (s *NotificationStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
