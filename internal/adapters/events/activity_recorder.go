package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
	pkgevents "github.com/floroz/ride-auction/pkg/events"
)

// ActivityStore appends audit rows
type ActivityStore interface {
	SaveActivity(ctx context.Context, tx pgx.Tx, activity *lifecycle.Activity) error
}

// OutboxStore enqueues events for the relay
type OutboxStore interface {
	SaveEvent(ctx context.Context, tx pgx.Tx, event *pkgevents.OutboxEvent) error
}

// ActivityRecorder writes an activity and the matching domain event in the caller's
// transaction, so both commit or roll back with the state change they describe.
type ActivityRecorder struct {
	activities ActivityStore
	outbox     OutboxStore
}

// NewActivityRecorder creates a recorder over the activity and outbox stores
func NewActivityRecorder(activities ActivityStore, outbox OutboxStore) *ActivityRecorder {
	return &ActivityRecorder{activities: activities, outbox: outbox}
}

// Record appends the activity and enqueues its event
func (r *ActivityRecorder) Record(ctx context.Context, tx pgx.Tx, activity *lifecycle.Activity) error {
	eventType := activity.Type.EventType()
	if eventType == "" {
		return fmt.Errorf("unknown activity type %q", activity.Type)
	}

	if err := r.activities.SaveActivity(ctx, tx, activity); err != nil {
		return err
	}

	payload, err := MarshalActivity(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	event := pkgevents.NewOutboxEvent(eventType, payload, activity.CreatedAt)
	if err := r.outbox.SaveEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}

// MarshalActivity encodes the activity as a protobuf Struct. Unset optional fields are omitted.
func MarshalActivity(activity *lifecycle.Activity) ([]byte, error) {
	fields := map[string]any{
		"activity_id":   activity.ID.String(),
		"auction_id":    activity.AuctionID.String(),
		"activity_type": string(activity.Type),
		"occurred_at":   activity.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	putUUID(fields, "user_id", activity.UserID)
	putUUID(fields, "company_id", activity.CompanyID)
	putUUID(fields, "bid_id", activity.BidID)
	putString(fields, "previous_value", activity.PreviousValue)
	putString(fields, "new_value", activity.NewValue)
	putString(fields, "notes", activity.Notes)

	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

// UnmarshalActivity decodes a payload written by MarshalActivity into its field map
func UnmarshalActivity(payload []byte) (map[string]any, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return msg.AsMap(), nil
}

func putUUID(fields map[string]any, key string, id *uuid.UUID) {
	if id != nil {
		fields[key] = id.String()
	}
}

func putString(fields map[string]any, key string, s *string) {
	if s != nil {
		fields[key] = *s
	}
}
