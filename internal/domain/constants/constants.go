// Package constants holds shared identifiers used across layers.
package constants

// Environment names.
const (
	EnvDevelop = "develop"
)

// Pub/Sub provider names.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Storage keys for the local key/value store. Each key is written as one
// atomic row; the whole collection under a key is replaced per write.
const (
	StorageKeySavedNotes      = "savedNotes"
	StorageKeyPendingRecord   = "pendingNotifications"
	StorageKeyDedupState      = "notifiedNotes"
	StorageKeyTrackingEnabled = "backgroundTrackingEnabled"
	StorageKeyDevices         = "registeredDevices"
)

// BackgroundTaskName is the stable name the proximity cycle registers under
// with the scheduler. Registering the same name twice is a no-op.
const BackgroundTaskName = "proximity-note-sync"
