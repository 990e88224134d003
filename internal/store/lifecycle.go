package store

import (
	"time"

	"github.com/desertthunder/marquee/internal/models"
)

// Status is the position of a request in its pending/fulfilled/rejected lifecycle.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Lifecycle tracks the most recent request against one resource.
//
// Error is cleared only by the next pending transition or an explicit ClearError.
type Lifecycle struct {
	Status    Status    `json:"status"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func (l *Lifecycle) begin(requestID string, now time.Time) {
	l.Status = StatusPending
	l.Loading = true
	l.Error = ""
	l.RequestID = requestID
	l.UpdatedAt = now
}

func (l *Lifecycle) fulfill(now time.Time) {
	l.Status = StatusFulfilled
	l.Loading = false
	l.UpdatedAt = now
}

func (l *Lifecycle) reject(message string, now time.Time) {
	l.Status = StatusRejected
	l.Loading = false
	l.Error = message
	l.UpdatedAt = now
}

// Started reports whether any request has been issued.
func (l Lifecycle) Started() bool {
	return l.Status != "" && l.Status != StatusIdle
}

// Resource pairs fetched data with its request lifecycle.
type Resource[T any] struct {
	Data T `json:"data"`
	Lifecycle
}

// MediaCollection is one catalog facet.
type MediaCollection = Resource[[]models.MediaItem]

// GenreCollection is the genre list for one media type.
type GenreCollection = Resource[[]models.Genre]

// ByType holds one independent value per [models.MediaType].
type ByType[T any] struct {
	Movie T `json:"movie"`
	TV    T `json:"tv"`
}

// Get returns the value for t. Unknown types yield the zero value.
func (b ByType[T]) Get(t models.MediaType) T {
	if p := b.at(t); p != nil {
		return *p
	}
	var zero T
	return zero
}

func (b *ByType[T]) at(t models.MediaType) *T {
	switch t {
	case models.MediaTypeMovie:
		return &b.Movie
	case models.MediaTypeTV:
		return &b.TV
	default:
		return nil
	}
}

func (b ByType[T]) mapValues(fn func(T) T) ByType[T] {
	return ByType[T]{Movie: fn(b.Movie), TV: fn(b.TV)}
}
