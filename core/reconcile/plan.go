package reconcile

import (
	"sort"

	"grid-sync/core/content"
)

// ActionType classifies what a grid row requires in the store.
type ActionType string

const (
	// ActionInsert creates a record that does not exist yet.
	ActionInsert ActionType = "insert"
	// ActionUpdate rewrites a record whose content changed or which was deleted.
	ActionUpdate ActionType = "update"
	// ActionSkip leaves an active record with an identical hash untouched.
	ActionSkip ActionType = "skip"
)

// planRow decides the action for a grid row given the existing record.
// fingerprint is the hash of the row's current content.
func planRow(existing *RowRecord, fingerprint string) ActionType {
	if existing == nil {
		return ActionInsert
	}

	// A deleted record reappearing in the grid is restored even when the
	// content is unchanged.
	if existing.Hash != fingerprint || !existing.Active() {
		return ActionUpdate
	}

	return ActionSkip
}

// planTombstones returns the active ids that were not seen in the grid, sorted.
func planTombstones(active []string, seen map[string]struct{}) []string {
	var missing []string
	for _, id := range active {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// entryContent returns the content to write to the grid for an upsert entry.
// The id cell is filled from the entry's row id when the payload lacks it.
func entryContent(e ChangeEntry) (content.Content, bool) {
	if e.Content == nil {
		return content.Content{}, false
	}

	c := e.Content.Clone()
	if c.Text("id") == "" {
		if e.RowID == "" {
			return content.Content{}, false
		}
		c.Set("id", content.String(e.RowID))
	}
	return c, true
}
