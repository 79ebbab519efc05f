package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"taxi/internal/geo"
	"taxi/internal/service"
)

// ──────────────────────────────────────────────
// MOCK GEOCODER
// ──────────────────────────────────────────────

// MockGeo is a mock implementation of geo.Service backed by a fixed
// address book.
type MockGeo struct {
	mu        sync.RWMutex
	addresses map[string]geo.Point

	// Counters for verification
	GeocodeCallCount int32

	// Error injection
	GeocodeError error
}

// NewMockGeo creates a mock geocoder.
func NewMockGeo() *MockGeo {
	return &MockGeo{addresses: make(map[string]geo.Point)}
}

// AddAddress registers a resolvable address.
func (m *MockGeo) AddAddress(address string, p geo.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[address] = p
}

func (m *MockGeo) Geocode(ctx context.Context, address string) (geo.Point, error) {
	atomic.AddInt32(&m.GeocodeCallCount, 1)
	if m.GeocodeError != nil {
		return geo.Point{}, m.GeocodeError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.addresses[address]
	if !ok {
		return geo.Point{}, geo.ErrUnresolvable
	}
	return p, nil
}

func (m *MockGeo) StaticMapURL(p geo.Point) string {
	return fmt.Sprintf("map://static/%f,%f", p.Lat, p.Lng)
}

func (m *MockGeo) RouteMapURL(a, b geo.Point) string {
	return fmt.Sprintf("map://route/%f,%f/%f,%f", a.Lat, a.Lng, b.Lat, b.Lng)
}

var _ geo.Service = (*MockGeo)(nil)

// ──────────────────────────────────────────────
// RECORDING NOTIFICATION SINK
// ──────────────────────────────────────────────

// RecordedNotification is one delivered notification.
type RecordedNotification struct {
	UserID  int64
	Event   service.NotificationEvent
	Payload map[string]any
}

// RecorderSink is a NotificationSink that records every delivery.
type RecorderSink struct {
	mu     sync.Mutex
	events []RecordedNotification
}

// NewRecorderSink creates an empty recorder.
func NewRecorderSink() *RecorderSink {
	return &RecorderSink{}
}

func (s *RecorderSink) Notify(ctx context.Context, userID int64, event service.NotificationEvent, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedNotification{UserID: userID, Event: event, Payload: payload})
}

// Events returns a snapshot of everything delivered so far.
func (s *RecorderSink) Events() []RecordedNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedNotification, len(s.events))
	copy(out, s.events)
	return out
}

// CountFor returns how many events of the given kind were delivered to the
// user.
func (s *RecorderSink) CountFor(userID int64, event service.NotificationEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.UserID == userID && e.Event == event {
			n++
		}
	}
	return n
}

var _ service.NotificationSink = (*RecorderSink)(nil)
