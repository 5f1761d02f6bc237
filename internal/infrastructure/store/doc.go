// Package store holds two store helpers:
//   - RunMigrations applies the SQL migrations with golang-migrate
//   - NewRedis builds a Redis client
//
// The Postgres connection pool is built in pkg/store, not here.
package store
