package models

import (
	"time"
)

// SettlementRun records a single execution of the point settlement sweep.
type SettlementRun struct {
	ID             int64          `db:"id" json:"id"`
	StartedAt      time.Time      `db:"started_at" json:"startedAt"`
	EntriesSettled int            `db:"entries_settled" json:"entriesSettled"`
	EntriesLapsed  int            `db:"entries_lapsed" json:"entriesLapsed"`
	EntriesSkipped int            `db:"entries_skipped" json:"entriesSkipped"`
	PointsApplied  int64          `db:"points_applied" json:"pointsApplied"`
	Summary        map[string]any `db:"summary" json:"summary,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}
