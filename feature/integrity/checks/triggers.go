package checks

import (
	"fmt"

	"gorm.io/gorm"
)

// TriggerReport lists the change queue triggers that are missing.
type TriggerReport struct {
	Installed []string `json:"installed"`
	Missing   []string `json:"missing"`
	Status    string   `json:"status"`
}

// CheckTriggers verifies that every expected trigger exists on table.
func CheckTriggers(db *gorm.DB, table string, expected []string) (*TriggerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var installed []string
	var err error
	switch db.Dialector.Name() {
	case "mysql":
		err = db.Raw("SELECT TRIGGER_NAME FROM information_schema.TRIGGERS WHERE TRIGGER_SCHEMA = DATABASE() AND EVENT_OBJECT_TABLE = ?", table).
			Scan(&installed).Error
	case "sqlite":
		err = db.Raw("SELECT name FROM sqlite_master WHERE type = 'trigger' AND tbl_name = ?", table).
			Scan(&installed).Error
	default:
		return nil, fmt.Errorf("trigger inspection is not supported on %s", db.Dialector.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers on %s: %w", table, err)
	}

	present := make(map[string]struct{}, len(installed))
	for _, name := range installed {
		present[name] = struct{}{}
	}

	report := &TriggerReport{Installed: installed, Missing: []string{}, Status: "ok"}
	if report.Installed == nil {
		report.Installed = []string{}
	}
	for _, name := range expected {
		if _, ok := present[name]; !ok {
			report.Missing = append(report.Missing, name)
			report.Status = "error"
		}
	}
	return report, nil
}
