package db

import "time"

// Optional marks a patch field as explicitly provided. The zero value means
// the field was omitted and the stored value is left untouched; a provided
// field with a nil inner value clears the column. Presence, not value,
// carries the distinction.
type Optional[T any] struct {
	present bool
	value   *T
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{present: true, value: &v}
}

// Clear returns an Optional that writes "no value".
func Clear[T any]() Optional[T] {
	return Optional[T]{present: true}
}

// Present reports whether the field was provided at all.
func (o Optional[T]) Present() bool { return o.present }

// Ptr returns the provided value, or nil when the field clears the column.
func (o Optional[T]) Ptr() *T { return o.value }

// TaskPatch is the allow-list of mutable task fields for partial updates.
// Anything outside this set cannot be touched through Update.
type TaskPatch struct {
	Title         Optional[string]
	Notes         Optional[string]
	DueDate       Optional[string]
	ScheduledDate Optional[string]
	Priority      Optional[int]
	ListID        Optional[string]
	Completed     Optional[bool]
	CompletedAt   Optional[time.Time]
}
