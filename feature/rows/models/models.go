package models

import "time"

// TableName is the table holding the relational side of the sync.
const TableName = "synced_rows"

// SyncedRow represents the 'synced_rows' table.
type SyncedRow struct {
	ID        string     `gorm:"column:id;primaryKey;type:varchar(191)" json:"id"`
	RowJSON   string     `gorm:"column:row_json;type:json;not null" json:"row_json"`
	RowHash   string     `gorm:"column:row_hash;type:char(64);not null" json:"row_hash"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
	Source    string     `gorm:"column:source;type:varchar(16);not null;default:store" json:"source"`
	TraceID   *string    `gorm:"column:trace_id;type:varchar(64)" json:"trace_id"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null;index" json:"updated_at"`
}

// TableName overrides gorm's pluralized default.
func (SyncedRow) TableName() string {
	return TableName
}

// Columns lists the columns the sync engine reads and writes.
var Columns = []string{"id", "row_json", "row_hash", "deleted_at", "source", "trace_id", "updated_at"}
