package model

import "time"

// Entity is a project, module, submodule or task row.
type Entity struct {
	Kind        EntityKind `json:"entity_type"`
	ID          int        `json:"id"`
	ParentID    *int       `json:"parent_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Progress    int        `json:"progress"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   *int       `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EntityPatch carries a partial update. Nil fields are left unchanged.
type EntityPatch struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	Progress    *int
	StartDate   *time.Time
	DueDate     *time.Time
	// ClearStartDate and ClearDueDate null the date; they win over a value.
	ClearStartDate bool
	ClearDueDate   bool
	// ParentID re-parents the entity when set.
	ParentID *int
	// ClearParent detaches the entity from its parent. Only projects allow it.
	ClearParent bool
}

// Apply returns a copy of e with the patch applied. ParentID is ignored here;
// moves go through their own path so they are logged as "moved".
func (p EntityPatch) Apply(e Entity) Entity {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Progress != nil {
		e.Progress = *p.Progress
	}
	if p.StartDate != nil {
		d := *p.StartDate
		e.StartDate = &d
	}
	if p.ClearStartDate {
		e.StartDate = nil
	}
	if p.DueDate != nil {
		d := *p.DueDate
		e.DueDate = &d
	}
	if p.ClearDueDate {
		e.DueDate = nil
	}
	return e
}

// HasFieldChanges reports whether the patch touches anything besides the parent.
func (p EntityPatch) HasFieldChanges() bool {
	return p.Name != nil || p.Description != nil || p.Status != nil || p.Priority != nil ||
		p.Progress != nil || p.StartDate != nil || p.DueDate != nil ||
		p.ClearStartDate || p.ClearDueDate
}

type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Expanded  bool      `json:"expanded"`
	CreatedAt time.Time `json:"created_at"`
}
