// Package httpapi exposes the notification pipeline to operator clients
// over HTTP: cursor-paginated history, unread counting, mark-read calls
// and a server-sent-events stream bridging the push channel.
//
// The surface is deliberately thin. Authentication, reverse-proxy routing
// and request logging are deployment concerns; the handler identifies the
// calling operator by the X-Operator-ID header and trusts it.
package httpapi
