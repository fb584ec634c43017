package enums

import "fmt"

// SyncStatus maps to the sync_status_enum enum in Postgres.
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

var validSyncStatuses = []SyncStatus{
	SyncStatusRunning,
	SyncStatusSucceeded,
	SyncStatusFailed,
}

// String implements fmt.Stringer.
func (s SyncStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical sync status enum.
func (s SyncStatus) IsValid() bool {
	for _, candidate := range validSyncStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSyncStatus converts raw input into SyncStatus.
func ParseSyncStatus(value string) (SyncStatus, error) {
	for _, candidate := range validSyncStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync status %q", value)
}
