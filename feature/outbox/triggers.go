package outbox

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	insertTrigger = "trg_synced_rows_outbox_ai"
	updateTrigger = "trg_synced_rows_outbox_au"
)

// MySQL bodies. A soft delete (deleted_at going from NULL to a value) becomes a
// DELETE entry; any other store write to an active row becomes an UPDATE.
const mysqlInsertTrigger = `CREATE TRIGGER ` + insertTrigger + ` AFTER INSERT ON synced_rows
FOR EACH ROW
BEGIN
  IF NEW.source = 'store' THEN
    INSERT INTO sync_outbox (event_type, row_id, row_json, source, trace_id, created_at)
    VALUES ('INSERT', NEW.id, NEW.row_json, NEW.source, NEW.trace_id, CURRENT_TIMESTAMP(3));
  END IF;
END`

const mysqlUpdateTrigger = `CREATE TRIGGER ` + updateTrigger + ` AFTER UPDATE ON synced_rows
FOR EACH ROW
BEGIN
  IF NEW.source = 'store' THEN
    IF OLD.deleted_at IS NULL AND NEW.deleted_at IS NOT NULL THEN
      INSERT INTO sync_outbox (event_type, row_id, row_json, source, trace_id, created_at)
      VALUES ('DELETE', NEW.id, NULL, NEW.source, NEW.trace_id, CURRENT_TIMESTAMP(3));
    ELSEIF NEW.deleted_at IS NULL THEN
      INSERT INTO sync_outbox (event_type, row_id, row_json, source, trace_id, created_at)
      VALUES ('UPDATE', NEW.id, NEW.row_json, NEW.source, NEW.trace_id, CURRENT_TIMESTAMP(3));
    END IF;
  END IF;
END`

// SQLite has no procedural IF, so each case is its own trigger with a WHEN clause.
const sqliteInsertTrigger = `CREATE TRIGGER ` + insertTrigger + ` AFTER INSERT ON synced_rows
WHEN NEW.source = 'store'
BEGIN
  INSERT INTO sync_outbox (event_type, row_id, row_json, source, trace_id, created_at)
  VALUES ('INSERT', NEW.id, NEW.row_json, NEW.source, NEW.trace_id, CURRENT_TIMESTAMP);
END`

const sqliteDeleteTrigger = `CREATE TRIGGER ` + updateTrigger + `_del AFTER UPDATE ON synced_rows
WHEN NEW.source = 'store' AND OLD.deleted_at IS NULL AND NEW.deleted_at IS NOT NULL
BEGIN
  INSERT INTO sync_outbox (event_type, row_id, row_json, source, trace_id, created_at)
  VALUES ('DELETE', NEW.id, NULL, NEW.source, NEW.trace_id, CURRENT_TIMESTAMP);
END`

const sqliteUpdateTrigger = `CREATE TRIGGER ` + updateTrigger + ` AFTER UPDATE ON synced_rows
WHEN NEW.source = 'store' AND NEW.deleted_at IS NULL
BEGIN
  INSERT INTO sync_outbox (event_type, row_id, row_json, source, trace_id, created_at)
  VALUES ('UPDATE', NEW.id, NEW.row_json, NEW.source, NEW.trace_id, CURRENT_TIMESTAMP);
END`

// TriggerNames returns the triggers InstallTriggers creates for a dialect.
func TriggerNames(dialect string) []string {
	switch dialect {
	case "mysql":
		return []string{insertTrigger, updateTrigger}
	case "sqlite":
		return []string{insertTrigger, updateTrigger, updateTrigger + "_del"}
	}
	return nil
}

// InstallTriggers (re)creates the triggers that feed the change queue from
// store-originated writes to 'synced_rows'. Both tables must exist.
func InstallTriggers(db *gorm.DB) error {
	names := TriggerNames(db.Dialector.Name())
	var stmts []string
	switch db.Dialector.Name() {
	case "mysql":
		stmts = []string{mysqlInsertTrigger, mysqlUpdateTrigger}
	case "sqlite":
		stmts = []string{sqliteInsertTrigger, sqliteUpdateTrigger, sqliteDeleteTrigger}
	default:
		return fmt.Errorf("triggers are not supported on %s", db.Dialector.Name())
	}

	for _, name := range names {
		if err := db.Exec("DROP TRIGGER IF EXISTS " + name).Error; err != nil {
			return fmt.Errorf("failed to drop trigger %s: %w", name, err)
		}
	}
	for i, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create trigger %s: %w", names[i], err)
		}
	}
	return nil
}
