// Package pgstore implements the notification store on PostgreSQL using a
// pgx connection pool.
//
// Pagination is keyset-based: notification IDs are UUIDv7 and sort in
// creation order, so one indexed `id < cursor ORDER BY id DESC` query pages
// strictly backward from any cursor with no offset scans.
//
// The full relational schema is an external concern; EnsureSchema only
// bootstraps the single table and index this store needs.
//
// # Usage
//
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err != nil { ... }
//	if err := pgstore.EnsureSchema(ctx, pool); err != nil { ... }
//	store := pgstore.New(pool)
package pgstore
