package core

type Operation int

const (
	OpList Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// CanPerform decides whether p may run op on t. t is only consulted for OpUpdate
// and may be nil otherwise. It has no side effects.
func CanPerform(p Principal, op Operation, t *Task) bool {
	if p.ID == "" || !p.Role.Valid() {
		return false
	}

	switch op {
	case OpList:
		return true
	case OpCreate, OpDelete:
		return p.IsAdmin()
	case OpUpdate:
		if p.IsAdmin() {
			return true
		}
		// unassigned task - только админ
		return t != nil && t.AssignedTo != nil && *t.AssignedTo == p.ID
	default:
		return false
	}
}
