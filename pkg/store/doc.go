// Package store holds the collaborator interfaces and implementations the
// service persists through: the SQLite document store for user and file
// records, the filesystem blob store for raw content, and the redis client
// used for sessions. Handlers and the auth core depend only on the
// interfaces, so tests substitute in-memory fakes.
package store
