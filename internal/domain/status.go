package domain

// SyncStatus is the externally visible state of the sync engine.
// Exactly one value is live at a time. Within a run the status advances
// monotonically, except for the logging_in -> waiting_otp -> logging_in
// detour and the final drop to idle/error.
type SyncStatus string

const (
	StatusIdle         SyncStatus = "idle"
	StatusStarting     SyncStatus = "starting"
	StatusLoggingIn    SyncStatus = "logging_in"
	StatusWaitingOtp   SyncStatus = "waiting_otp"
	StatusFetchingData SyncStatus = "fetching_data"
	StatusSavingData   SyncStatus = "saving_data"
	StatusSuccess      SyncStatus = "success"
	StatusError        SyncStatus = "error"
)

// Terminal reports whether the status marks the end of a run.
func (s SyncStatus) Terminal() bool {
	return s == StatusIdle || s == StatusSuccess || s == StatusError
}
