// Package model contains the GORM persistence models.
package model

import "time"

// KVEntry is one durable storage key. The engine's whole decision state is
// a handful of keys, each holding a JSON document that is replaced in one
// write; that single-row replace is the atomicity granularity the task
// relies on across process kills.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the GORM table name.
func (KVEntry) TableName() string {
	return "local_state"
}
