package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/Apolo151/tourist-village-app-sub004/internal/domain/apartment"
	domainbooking "github.com/Apolo151/tourist-village-app-sub004/internal/domain/booking"
)

const (
	bookingTopic = "bookings.lifecycle"

	// RefreshTopic is exported so worker instances can subscribe to it.
	RefreshTopic = "apartments.occupancy.refresh"
)

// BookingEventPublisher emits one CloudEvents-style envelope per booking
// write, keyed by booking id so per-booking ordering survives partitioning.
type BookingEventPublisher struct {
	Producer *Producer
	Source   string
}

func (p *BookingEventPublisher) Publish(ctx context.Context, event string, b *domainbooking.Booking) error {
	data := map[string]any{
		"booking_id":   int64(b.ID),
		"apartment_id": int64(b.ApartmentID),
		"user_id":      int64(b.UserID),
		"user_type":    string(b.UserType),
		"arrival_date": b.ArrivalDate.Format("2006-01-02"),
		"leaving_date": b.LeavingDate.Format("2006-01-02"),
		"status":       string(b.Status),
	}
	payload, err := json.Marshal(envelope(event, p.source(), data))
	if err != nil {
		return err
	}
	return p.Producer.Publish(ctx, bookingTopic, strconv.FormatInt(int64(b.ID), 10), payload, nil)
}

func (p *BookingEventPublisher) source() string {
	if p.Source != "" {
		return p.Source
	}
	return "tourist-village-app"
}

// RefreshPublisher triggers downstream occupancy-view consumers instead of
// (or in addition to) rebuilding a local materialized view.
type RefreshPublisher struct {
	Producer *Producer
	Source   string
}

func (p *RefreshPublisher) Refresh(ctx context.Context) error {
	payload, err := json.Marshal(envelope("apartments.occupancy.refresh", p.source(), map[string]any{}))
	if err != nil {
		return err
	}
	return p.Producer.Publish(ctx, RefreshTopic, "occupancy", payload, nil)
}

func (p *RefreshPublisher) source() string {
	if p.Source != "" {
		return p.Source
	}
	return "tourist-village-app"
}

// RefreshHandler consumes refresh requests and rebuilds the local view, so a
// worker instance can serve refreshes emitted by the API instances.
type RefreshHandler struct {
	View apartment.OccupancyView
}

func (h RefreshHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return h.View.Refresh(ctx)
}

func envelope(eventType, source string, data map[string]any) map[string]any {
	return map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            eventType + ".v1",
		"source":          source,
		"time":            time.Now().UTC().Format(time.RFC3339),
		"datacontenttype": "application/json",
		"data":            data,
	}
}
