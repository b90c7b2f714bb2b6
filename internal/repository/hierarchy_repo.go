package repository

import (
	"context"

	"digihub/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type HierarchyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHierarchyRepository(db *pgxpool.Pool, logger *zap.Logger) *HierarchyRepository {
	return &HierarchyRepository{db: db, logger: logger}
}

// Load returns every group, project, module and task as flat lists ordered by id.
// Submodules are not part of the tree.
func (r *HierarchyRepository) Load(ctx context.Context) (*model.Hierarchy, error) {
	h := &model.Hierarchy{
		Groups:   []model.HierarchyGroup{},
		Projects: []model.HierarchyProject{},
		Modules:  []model.HierarchyModule{},
		Tasks:    []model.HierarchyTask{},
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, expanded FROM groups ORDER BY id`)
	if err != nil {
		return nil, r.fail("groups", err)
	}
	for rows.Next() {
		var g model.HierarchyGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Expanded); err != nil {
			rows.Close()
			return nil, r.fail("groups", err)
		}
		h.Groups = append(h.Groups, g)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `
        SELECT p.id, p.group_id, p.name, p.status,
               (SELECT COUNT(*) FROM modules m WHERE m.project_id = p.id)
        FROM projects p ORDER BY p.id`)
	if err != nil {
		return nil, r.fail("projects", err)
	}
	for rows.Next() {
		var p model.HierarchyProject
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.Status, &p.ModuleCount); err != nil {
			rows.Close()
			return nil, r.fail("projects", err)
		}
		h.Projects = append(h.Projects, p)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `
        SELECT m.id, m.project_id, m.name, m.status,
               (SELECT COUNT(*) FROM tasks t WHERE t.module_id = m.id)
        FROM modules m ORDER BY m.id`)
	if err != nil {
		return nil, r.fail("modules", err)
	}
	for rows.Next() {
		var m model.HierarchyModule
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Status, &m.TaskCount); err != nil {
			rows.Close()
			return nil, r.fail("modules", err)
		}
		h.Modules = append(h.Modules, m)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `SELECT id, module_id, name, status FROM tasks ORDER BY id`)
	if err != nil {
		return nil, r.fail("tasks", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t model.HierarchyTask
		if err := rows.Scan(&t.ID, &t.ModuleID, &t.Name, &t.Status); err != nil {
			return nil, r.fail("tasks", err)
		}
		h.Tasks = append(h.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("tasks", err)
	}

	r.logger.Debug("Hierarchy loaded",
		zap.Int("groups", len(h.Groups)),
		zap.Int("projects", len(h.Projects)),
		zap.Int("modules", len(h.Modules)),
		zap.Int("tasks", len(h.Tasks)),
	)
	return h, nil
}

func (r *HierarchyRepository) fail(part string, err error) error {
	r.logger.Error("Failed to load hierarchy", zap.String("part", part), zap.Error(err))
	return err
}
