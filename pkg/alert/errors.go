package alert

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("alert: notification not found")

	// ErrEmptyID is returned when a notification without an ID is stored.
	ErrEmptyID = errors.New("alert: notification ID is required")

	// ErrCursorInvalid is returned when a cursor token cannot be decoded.
	ErrCursorInvalid = errors.New("alert: invalid cursor")

	// ErrCursorScope is returned when a cursor is used against a scope or
	// filter other than the one it was issued for.
	ErrCursorScope = errors.New("alert: cursor does not match query scope")

	// ErrStoreFailed wraps persistence failures surfaced by Publish.
	ErrStoreFailed = errors.New("alert: store write failed")
)
