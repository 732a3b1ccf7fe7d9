// Package redisstore implements the notification store on Redis.
//
// Each notification lives as a JSON string under its own key; membership
// indexes are lexicographic sorted sets. Notification IDs are UUIDv7, so
// their string order is creation order and one ZREVRANGEBYLEX with an
// exclusive max bound pages strictly backward from any cursor.
//
// Index layout (prefix configurable):
//
//	alertfeed:notif:<id>                 JSON document
//	alertfeed:idx:all                    every notification
//	alertfeed:idx:owner:<owner>          one owner's notifications
//	alertfeed:idx:owner:<owner>:unread   unread subset
//	alertfeed:idx:owner:<owner>:read     read subset
//
// Mark-read moves an ID between the unread and read subsets and rewrites
// the document, so read-state filtered pagination stays a single range
// query.
//
// # Usage
//
//	client, err := redisstore.Connect(ctx, cfg)
//	if err != nil { ... }
//	store := redisstore.New(client)
package redisstore
