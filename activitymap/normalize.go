// Package activitymap turns auth transition events into a flat record for
// audit logs and downstream sinks.
package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-todos"
)

const (
	MetadataKeyAction    = "action"
	MetadataKeyErrorKind = "error_kind"
	MetadataKeyOutcome   = "outcome"
)

const (
	defaultChannel    = "auth"
	defaultObjectType = "session"
	defaultActorID    = "anonymous"
)

// Record is the normalized shape of a todos.ActivityEvent
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization
type Option func(*options)

type options struct {
	channel       string
	objectType    string
	actorFallback string
	now           func() time.Time
}

// WithChannel sets the record channel
func WithChannel(channel string) Option {
	return func(o *options) {
		o.channel = strings.TrimSpace(channel)
	}
}

// WithObjectType sets the record object type
func WithObjectType(objectType string) Option {
	return func(o *options) {
		o.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event has no username
func WithActorFallback(actorID string) Option {
	return func(o *options) {
		if actorID = strings.TrimSpace(actorID); actorID != "" {
			o.actorFallback = actorID
		}
	}
}

// WithClock sets the clock used for events without OccurredAt
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Normalize converts event into a Record
func Normalize(event todos.ActivityEvent, opts ...Option) Record {
	o := options{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	username := strings.TrimSpace(event.Username)
	actorID := username
	if actorID == "" {
		actorID = o.actorFallback
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = o.now()
	}

	return Record{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: o.objectType,
		ObjectID:   username,
		Channel:    o.channel,
		Metadata:   metadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

// Sink returns a todos.ActivitySink that normalizes every event and hands
// the record to fn
func Sink(fn func(Record), opts ...Option) todos.ActivitySink {
	return todos.ActivitySinkFunc(func(_ context.Context, event todos.ActivityEvent) error {
		if fn != nil {
			fn(Normalize(event, opts...))
		}
		return nil
	})
}

func metadata(event todos.ActivityEvent) map[string]any {
	out := make(map[string]any, len(event.Metadata)+3)
	for key, value := range event.Metadata {
		out[key] = value
	}

	if event.Action != "" {
		out[MetadataKeyAction] = string(event.Action)
	}

	if strings.HasSuffix(string(event.EventType), ".failure") || event.Action.IsFailure() {
		out[MetadataKeyOutcome] = "failure"
	} else {
		out[MetadataKeyOutcome] = "success"
	}

	if event.ErrorKind != "" {
		out[MetadataKeyErrorKind] = string(event.ErrorKind)
	}

	return out
}
