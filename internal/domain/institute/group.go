package institute

import (
	"fmt"
	"strings"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Group holds students, unique by student ID.
type Group struct {
	named    shared.Named
	students keyedList[string, *Student]
}

// NewGroup builds an empty group.
func NewGroup(name string) (*Group, error) {
	named, err := shared.NewNamed(name)
	if err != nil {
		return nil, err
	}
	return &Group{
		named:    named,
		students: newKeyedList(func(s *Student) string { return s.id }),
	}, nil
}

// Name returns the group name.
func (g *Group) Name() string { return g.named.Name() }

// Students returns the students in insertion order.
func (g *Group) Students() []*Student {
	return g.students.snapshot()
}

// AddStudent appends a student whose ID is not yet in the group.
func (g *Group) AddStudent(s *Student) error {
	if !g.students.add(s) {
		return shared.Duplicatef("group", "AddStudent", "Student with ID %s already in group %s.", s.id, g.Name())
	}
	return nil
}

// ExtendStudents adds students in order, stopping at the first failure.
func (g *Group) ExtendStudents(students []*Student) error {
	return extend(students, g.AddStudent)
}

// RemoveStudent removes the student with the given ID.
func (g *Group) RemoveStudent(studentID string) error {
	studentID = strings.TrimSpace(studentID)
	if !g.students.remove(studentID) {
		return shared.NotFoundf("group", "RemoveStudent", "Student with ID %s not found in group %s.", studentID, g.Name())
	}
	return nil
}

// FindStudent returns the student with the given ID, if any.
func (g *Group) FindStudent(studentID string) (*Student, bool) {
	return g.students.find(strings.TrimSpace(studentID))
}

// Snapshot returns the persisted form of the group.
func (g *Group) Snapshot() GroupSnapshot {
	return GroupSnapshot{
		Name:     ref(g.Name()),
		Students: snapshotAll(g.students.items, (*Student).Snapshot),
	}
}

// GroupFromSnapshot rebuilds a group, re-checking student ID uniqueness.
func GroupFromSnapshot(snap GroupSnapshot) (*Group, error) {
	if snap.Name == nil {
		return nil, missingKey("group", "name")
	}
	g, err := NewGroup(*snap.Name)
	if err != nil {
		return nil, err
	}
	if err := restoreAll(snap.Students, StudentFromSnapshot, g.AddStudent); err != nil {
		return nil, err
	}
	return g, nil
}

// String renders e.g. "Group A1: s1, s2".
func (g *Group) String() string {
	ids := make([]string, 0, g.students.len())
	for _, s := range g.students.items {
		ids = append(ids, s.id)
	}
	return fmt.Sprintf("Group %s: %s", g.Name(), joinOr(ids, "No students"))
}

// joinOr comma-joins names, or returns empty when there are none.
func joinOr(names []string, empty string) string {
	if len(names) == 0 {
		return empty
	}
	return strings.Join(names, ", ")
}
