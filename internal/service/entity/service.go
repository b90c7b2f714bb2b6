// Package entity creates, updates, moves and deletes projects, modules, submodules
// and tasks, writing the matching activity log row in the same transaction.
//
// Logging policy: create writes "created" with empty details; an update writes one
// "updated" row whose details hold exactly the watched fields that changed, and
// nothing at all when none did; a re-parent writes "moved"; deleting a child
// writes "deleted" on its parent entity. A single call that both re-parents and
// changes watched fields writes two rows, "moved" then "updated", so the move
// stays visible as its own feed item.
package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digihub/internal/model"
	"digihub/internal/repository"
	"digihub/internal/service/changelog"
	"digihub/pkg/metrics"

	"go.uber.org/zap"
)

const (
	DefaultStatus   = "todo"
	DefaultPriority = "medium"
)

type Store interface {
	Get(ctx context.Context, kind model.EntityKind, id int) (*model.Entity, error)
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.EntityTx) error) error
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

type CreateInput struct {
	Kind        model.EntityKind
	ParentID    *int
	Name        string
	Description string
	Status      string
	Priority    string
	Progress    int
	StartDate   *time.Time
	DueDate     *time.Time
}

func (s *Service) Get(ctx context.Context, kind model.EntityKind, id int) (*model.Entity, error) {
	e, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, actorID int, in CreateInput) (*model.Entity, error) {
	if !in.Kind.Valid() {
		return nil, model.ErrInvalidEntityKind
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateProgress(in.Progress); err != nil {
		return nil, err
	}
	if in.Kind.ParentRequired() && in.ParentID == nil {
		return nil, fmt.Errorf("%w: %s requires %s", ErrInvalidParent, in.Kind, in.Kind.ParentColumn())
	}

	e := &model.Entity{
		Kind:        in.Kind,
		ParentID:    in.ParentID,
		Name:        name,
		Description: in.Description,
		Status:      orDefault(in.Status, DefaultStatus),
		Priority:    orDefault(in.Priority, DefaultPriority),
		Progress:    in.Progress,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.EntityTx) error {
		if err := tx.SetActingUser(ctx, actorID); err != nil {
			return err
		}
		if err := checkParent(ctx, tx, e.Kind, e.ParentID); err != nil {
			return err
		}
		if err := tx.Insert(ctx, e); err != nil {
			return err
		}
		return s.writeLog(ctx, tx, &model.ActivityLog{
			Action:     model.ActionCreated,
			EntityKind: e.Kind,
			EntityID:   e.ID,
			EntityName: e.Name,
			Details:    model.Details{},
		})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return e, nil
}

// Update applies patch to the entity. ParentID re-parents it and ClearParent
// detaches it, both logged as "moved".
func (s *Service) Update(ctx context.Context, actorID int, kind model.EntityKind, id int, patch model.EntityPatch) (*model.Entity, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidEntityKind
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		patch.Name = &name
	}
	if patch.ClearParent && kind.ParentRequired() {
		return nil, fmt.Errorf("%w: %s requires %s", ErrInvalidParent, kind, kind.ParentColumn())
	}
	if patch.Progress != nil {
		if err := validateProgress(*patch.Progress); err != nil {
			return nil, err
		}
	}

	var result *model.Entity
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.EntityTx) error {
		if err := tx.SetActingUser(ctx, actorID); err != nil {
			return err
		}
		before, err := tx.Lock(ctx, kind, id)
		if err != nil {
			return err
		}

		after := patch.Apply(*before)
		var moved bool
		switch {
		case patch.ClearParent:
			moved = before.ParentID != nil
			after.ParentID = nil
		case patch.ParentID != nil && !sameParent(before.ParentID, patch.ParentID):
			moved = true
			if err := checkParent(ctx, tx, kind, patch.ParentID); err != nil {
				return err
			}
			parent := *patch.ParentID
			after.ParentID = &parent
		}

		diff := changelog.Diff(*before, after)
		if !moved && len(diff) == 0 && after.Description == before.Description {
			result = before
			return nil
		}

		if err := tx.Update(ctx, &after); err != nil {
			return err
		}
		if moved {
			if err := s.writeLog(ctx, tx, &model.ActivityLog{
				Action:     model.ActionMoved,
				EntityKind: kind,
				EntityID:   id,
				EntityName: after.Name,
				Details:    changelog.ParentDiff(kind, before.ParentID, after.ParentID),
			}); err != nil {
				return err
			}
		}
		if len(diff) > 0 {
			if err := s.writeLog(ctx, tx, &model.ActivityLog{
				Action:     model.ActionUpdated,
				EntityKind: kind,
				EntityID:   id,
				EntityName: after.Name,
				Details:    diff,
			}); err != nil {
				return err
			}
		}
		result = &after
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return result, nil
}

// Move re-parents the entity under newParentID.
func (s *Service) Move(ctx context.Context, actorID int, kind model.EntityKind, id, newParentID int) (*model.Entity, error) {
	return s.Update(ctx, actorID, kind, id, model.EntityPatch{ParentID: &newParentID})
}

// Delete removes the entity. Logs and comments attached to it cascade away, so
// the deletion is recorded on the parent entity when there is one.
func (s *Service) Delete(ctx context.Context, actorID int, kind model.EntityKind, id int) error {
	if !kind.Valid() {
		return model.ErrInvalidEntityKind
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.EntityTx) error {
		if err := tx.SetActingUser(ctx, actorID); err != nil {
			return err
		}
		e, err := tx.Lock(ctx, kind, id)
		if err != nil {
			return err
		}
		if parentKind, ok := kind.ParentKind(); ok && e.ParentID != nil {
			if err := s.writeLog(ctx, tx, &model.ActivityLog{
				Action:     model.ActionDeleted,
				EntityKind: parentKind,
				EntityID:   *e.ParentID,
				EntityName: e.Name,
				Details:    model.Details{},
			}); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, kind, id)
	})
	if err != nil {
		return mapStoreErr(err)
	}

	s.logger.Info("Entity deleted",
		zap.String("entity_type", string(kind)),
		zap.Int("entity_id", id),
		zap.Int("user_id", actorID),
	)
	return nil
}

func (s *Service) writeLog(ctx context.Context, tx repository.EntityTx, l *model.ActivityLog) error {
	if err := tx.InsertLog(ctx, l); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	metrics.IncrementActivityLog(string(l.EntityKind), string(l.Action))
	return nil
}

func checkParent(ctx context.Context, tx repository.EntityTx, kind model.EntityKind, parentID *int) error {
	if parentID == nil {
		if kind.ParentRequired() {
			return ErrInvalidParent
		}
		return nil
	}
	ok, err := tx.ParentExists(ctx, kind, *parentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrParentNotFound
	}
	return nil
}

func sameParent(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func validateProgress(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
