package rest

import (
	"bytes"
	"encoding/json"

	"taskboard/tasks/core"
)

// NullableString tells an absent key from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// Ptr maps null and "" to an empty reference and leaves absent keys nil.
func (n NullableString) Ptr() *string {
	if !n.Set {
		return nil
	}
	if n.Value == nil {
		empty := ""
		return &empty
	}
	v := *n.Value
	return &v
}

// Keys other than these (createdBy, _id, ...) are ignored.
type CreateTaskIn struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	AssignedTo  NullableString `json:"assignedTo"`
}

func (in CreateTaskIn) Draft() core.TaskDraft {
	d := core.TaskDraft{
		Title:       in.Title,
		Description: in.Description,
		Status:      core.TaskStatus(in.Status),
	}
	if p := in.AssignedTo.Ptr(); p != nil && *p != "" {
		d.AssignedTo = p
	}
	return d
}

type PatchTaskIn struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *string        `json:"status,omitempty"` // pending|in-progress|done
	AssignedTo  NullableString `json:"assignedTo"`       // null или "" - снять назначение
}

func (in PatchTaskIn) Patch() core.TaskPatch {
	p := core.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		AssignedTo:  in.AssignedTo.Ptr(),
	}
	if in.Status != nil {
		st := core.TaskStatus(*in.Status)
		p.Status = &st
	}
	return p
}

type RegisterIn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
