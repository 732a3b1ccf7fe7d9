package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// NotificationID records the notification identifier under the key
// "notification_id". If id is empty, it returns an empty Attr.
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// OwnerID records the owning operator under the key "owner_id".
// If id is empty, it returns an empty Attr.
func OwnerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("owner_id", id)
}

// TagID records the device tag under the key "tag_id".
// If id is empty, it returns an empty Attr.
func TagID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("tag_id", id)
}

// Tab records the active feed tab under the key "tab".
func Tab(tab string) slog.Attr {
	return slog.String("tab", tab)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
