package model

import (
	"time"
)

// Sync status values recorded in the sync_status ledger
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncStatus is one ledger row per job family. The scheduler reads
// LastSync to gate long-cadence jobs; operators read the rest.
type SyncStatus struct {
	SyncType         string     `json:"sync_type" db:"sync_type"`
	Status           string     `json:"status" db:"status"`
	LastSync         *time.Time `json:"last_sync,omitempty" db:"last_sync"`
	RecordsProcessed *int       `json:"records_processed,omitempty" db:"records_processed"`
	ErrorMessage     *string    `json:"error_message,omitempty" db:"error_message"`
}

// AccessToken is a bearer credential obtained out-of-band and consumed by
// the structures sync job.
type AccessToken struct {
	AccessToken  string    `json:"-" db:"access_token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
}
