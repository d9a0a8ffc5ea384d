package rest

import (
	"encoding/json"
	"testing"

	"taskboard/tasks/core"
)

func TestPatchTaskIn_AssignedTo(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
		want *string
	}{
		{name: "absent", body: `{"title":"x"}`, want: nil},
		{name: "null", body: `{"assignedTo":null}`, want: strPtr("")},
		{name: "empty", body: `{"assignedTo":""}`, want: strPtr("")},
		{name: "value", body: `{"assignedTo":"u1"}`, want: strPtr("u1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var in PatchTaskIn
			if err := json.Unmarshal([]byte(tc.body), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got := in.Patch().AssignedTo
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil, got %q", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected %q, got %v", *tc.want, got)
			}
		})
	}
}

func TestPatchTaskIn_IgnoresIdentityKeys(t *testing.T) {
	t.Parallel()

	var in PatchTaskIn
	body := `{"_id":"x","createdBy":"y","status":"done"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	p := in.Patch()
	if p.Status == nil || *p.Status != core.StatusDone {
		t.Fatalf("expected status done, got %v", p.Status)
	}
	if p.Title != nil || p.Description != nil || p.AssignedTo != nil {
		t.Fatalf("unexpected fields in patch: %+v", p)
	}
}

func TestCreateTaskIn_Draft(t *testing.T) {
	t.Parallel()

	var in CreateTaskIn
	if err := json.Unmarshal([]byte(`{"title":"t","assignedTo":null,"createdBy":"spoof"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d := in.Draft(); d.AssignedTo != nil || d.Title != "t" {
		t.Fatalf("unexpected draft: %+v", d)
	}
}

func TestNullableString_RejectsNonString(t *testing.T) {
	t.Parallel()

	var in PatchTaskIn
	if err := json.Unmarshal([]byte(`{"assignedTo":42}`), &in); err == nil {
		t.Fatalf("expected error for numeric assignedTo")
	}
}

func strPtr(v string) *string {
	return &v
}
