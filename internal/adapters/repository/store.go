// Package repository holds uploaded trial tables, one per session.
package repository

import (
	"context"
	"time"

	"github.com/okian/fieldtrials/internal/domain/model"
)

// Session owns one uploaded Trial Table. Tables are immutable, so a Session
// returned by Get may be used without further locking.
type Session struct {
	ID         string
	Filename   string
	Table      *model.Table
	Kept       int
	Dropped    int
	CreatedAt  time.Time
	LastAccess time.Time
}

// Store provides access to live sessions.
type Store interface {
	// Put stores s, assigning an ID when s.ID is empty, and returns the stored copy.
	Put(ctx context.Context, s Session) (Session, error)

	// Get returns a live session and refreshes its idle timer.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (Session, error)

	// Delete removes a session. Returns ErrNotFound if it is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) int

	// Sweep drops every expired session and returns how many were dropped.
	Sweep(ctx context.Context) int
}
