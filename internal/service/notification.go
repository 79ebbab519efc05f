package service

import (
	"context"
	"log"
)

// NotificationEvent classifies a notification.
type NotificationEvent string

const (
	NotificationRideRequested  NotificationEvent = "RIDE_REQUESTED"
	NotificationDriverAssigned NotificationEvent = "DRIVER_ASSIGNED"
	NotificationDriverDeparted NotificationEvent = "DRIVER_DEPARTED"
	NotificationTripStarted    NotificationEvent = "TRIP_STARTED"
	NotificationTripCompleted  NotificationEvent = "TRIP_COMPLETED"
	NotificationRideCancelled  NotificationEvent = "RIDE_CANCELLED"
	NotificationReceiptReady   NotificationEvent = "RECEIPT_READY"
)

// NotificationSink delivers events to users. Delivery is fire-and-forget:
// the core never blocks on, or fails because of, delivery.
type NotificationSink interface {
	Notify(ctx context.Context, userID int64, event NotificationEvent, payload map[string]any)
}

// LogSink is a NotificationSink that writes to the process log. It stands
// in for the chat transport, which renders the actual user-facing messages.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Notify logs the event.
func (s *LogSink) Notify(ctx context.Context, userID int64, event NotificationEvent, payload map[string]any) {
	log.Printf("[NOTIFICATION] Recipient=%d, Event=%s, Payload=%v", userID, event, payload)
}

var _ NotificationSink = (*LogSink)(nil)
