package models

import "time"

// TableName is the change queue table.
const TableName = "sync_outbox"

// OutboxEntry represents the 'sync_outbox' table.
type OutboxEntry struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventType   string     `gorm:"column:event_type;type:varchar(16);not null" json:"event_type"`
	RowID       string     `gorm:"column:row_id;type:varchar(191);not null;index" json:"row_id"`
	RowJSON     *string    `gorm:"column:row_json;type:json" json:"row_json"`
	Source      string     `gorm:"column:source;type:varchar(16);not null" json:"source"`
	TraceID     *string    `gorm:"column:trace_id;type:varchar(64)" json:"trace_id"`
	ProcessedAt *time.Time `gorm:"column:processed_at;index" json:"processed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
}

// TableName overrides gorm's pluralized default.
func (OutboxEntry) TableName() string {
	return TableName
}

// Columns lists the columns the sync engine reads and writes.
var Columns = []string{"id", "event_type", "row_id", "row_json", "source", "trace_id", "processed_at", "created_at"}
