// Package changelog computes the details payload of "updated" and "moved" activity logs.
package changelog

import (
	"time"

	"digihub/internal/model"
)

const dateLayout = "2006-01-02"

// WatchedFields are the entity attributes whose changes are logged, in payload order.
var WatchedFields = []string{"name", "status", "priority", "progress", "start_date", "due_date"}

// Key returns the details key for field.
func Key(field string) string {
	return field + "_changed"
}

// Diff returns one entry per watched field whose value differs between before and after.
// Unchanged fields are omitted, so an empty result means nothing worth logging.
func Diff(before, after model.Entity) model.Details {
	d := model.Details{}

	if before.Name != after.Name {
		d[Key("name")] = model.FieldChange{From: before.Name, To: after.Name}
	}
	if before.Status != after.Status {
		d[Key("status")] = model.FieldChange{From: before.Status, To: after.Status}
	}
	if before.Priority != after.Priority {
		d[Key("priority")] = model.FieldChange{From: before.Priority, To: after.Priority}
	}
	if before.Progress != after.Progress {
		d[Key("progress")] = model.FieldChange{From: before.Progress, To: after.Progress}
	}
	if from, to := dateValue(before.StartDate), dateValue(after.StartDate); from != to {
		d[Key("start_date")] = model.FieldChange{From: from, To: to}
	}
	if from, to := dateValue(before.DueDate), dateValue(after.DueDate); from != to {
		d[Key("due_date")] = model.FieldChange{From: from, To: to}
	}
	return d
}

// ParentDiff is the details payload of a move.
func ParentDiff(kind model.EntityKind, from, to *int) model.Details {
	return model.Details{
		Key(kind.ParentColumn()): {From: intValue(from), To: intValue(to)},
	}
}

// dateValue compares at day granularity, which is what the DATE columns store.
func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
