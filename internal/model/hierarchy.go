package model

// Hierarchy is the flat payload the tree editor builds its node graph from.
type Hierarchy struct {
	Groups   []HierarchyGroup   `json:"groups"`
	Projects []HierarchyProject `json:"projects"`
	Modules  []HierarchyModule  `json:"modules"`
	Tasks    []HierarchyTask    `json:"tasks"`
}

type HierarchyGroup struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Expanded bool   `json:"expanded"`
}

type HierarchyProject struct {
	ID          int    `json:"id"`
	GroupID     *int   `json:"group_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	ModuleCount int    `json:"module_count"`
}

type HierarchyModule struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	TaskCount int    `json:"task_count"`
}

type HierarchyTask struct {
	ID       int    `json:"id"`
	ModuleID int    `json:"module_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}
