package core

type ListTasksFilter struct {
	AssignedTo *string // nil - все задачи
}
