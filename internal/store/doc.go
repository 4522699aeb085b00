// Package store holds the image, story and auth-session collections.
//
// Every store is safe for concurrent use. Stores built over a kv.Store
// write a full JSON snapshot of their state after each mutation and return
// the write error to the caller; the in-memory state keeps the mutation
// even when the write fails, so a later successful write catches the slot up.
package store
