package models

import (
	"time"
)

// PointKind classifies a ledger entry.
type PointKind string

const (
	PointKindEarn   PointKind = "earn"
	PointKindRedeem PointKind = "redeem"
	PointKindAdjust PointKind = "adjust"
)

// KindForChange derives the ledger kind from the sign of a change amount.
func KindForChange(change int64) PointKind {
	if change > 0 {
		return PointKindEarn
	}
	return PointKindRedeem
}

// PointStatus is the derived display status of a ledger entry.
type PointStatus string

const (
	PointStatusPending   PointStatus = "pending"
	PointStatusAvailable PointStatus = "available"
	PointStatusExpired   PointStatus = "expired"
)

// PointEntry is an immutable record of a single point change. Entries are
// never deleted; only the Settled and Lapsed flags ever change, each at
// most once.
//
// PendingUntil, when set and in the future at creation time, defers the
// entry's effect until the settlement sweep picks it up. ExpiresAt, when
// set, makes the entry ineligible once that instant passes; an entry that
// expires before it is settled lapses permanently and never affects the
// cached balance.
type PointEntry struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"userId"`
	Change       int64      `db:"change" json:"change"`
	Kind         PointKind  `db:"kind" json:"kind"`
	Description  string     `db:"description" json:"description,omitempty"`
	PendingUntil *time.Time `db:"pending_until" json:"pendingUntil,omitempty"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	Settled      bool       `db:"settled" json:"settled"`
	Lapsed       bool       `db:"lapsed" json:"lapsed"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// StatusAt derives the display status of the entry at a given instant.
func (e *PointEntry) StatusAt(now time.Time) PointStatus {
	if e.Lapsed || (e.ExpiresAt != nil && e.ExpiresAt.Before(now)) {
		return PointStatusExpired
	}
	if !e.Settled && e.PendingUntil != nil && e.PendingUntil.After(now) {
		return PointStatusPending
	}
	return PointStatusAvailable
}
