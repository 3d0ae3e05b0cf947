package institute

import (
	"fmt"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Department holds groups, unique by name.
type Department struct {
	named  shared.Named
	groups keyedList[string, *Group]
}

// NewDepartment builds an empty department.
func NewDepartment(name string) (*Department, error) {
	named, err := shared.NewNamed(name)
	if err != nil {
		return nil, err
	}
	return &Department{
		named:  named,
		groups: newKeyedList(func(g *Group) string { return g.Name() }),
	}, nil
}

// Name returns the department name.
func (d *Department) Name() string { return d.named.Name() }

// Groups returns the groups in insertion order.
func (d *Department) Groups() []*Group {
	return d.groups.snapshot()
}

// AddGroup appends a group whose name is not yet taken.
func (d *Department) AddGroup(g *Group) error {
	if !d.groups.add(g) {
		return shared.Duplicatef("department", "AddGroup", "Group %s already exists in department %s.", g.Name(), d.Name())
	}
	return nil
}

// ExtendGroups adds groups in order, stopping at the first failure.
func (d *Department) ExtendGroups(groups []*Group) error {
	return extend(groups, d.AddGroup)
}

// RemoveGroup removes the group with the given name.
func (d *Department) RemoveGroup(name string) error {
	key, ok := lookupName(name)
	if !ok || !d.groups.remove(key) {
		return shared.NotFoundf("department", "RemoveGroup", "Group %s not found in department %s.", name, d.Name())
	}
	return nil
}

// RenameGroup renames the group called name to newName, refusing a name
// another group of the department already has.
func (d *Department) RenameGroup(name, newName string) error {
	to, err := shared.NewNamed(newName)
	if err != nil {
		return err
	}
	key, _ := lookupName(name)
	found, free := d.groups.rekey(key, to.Name(), func(g *Group) { g.named = to })
	switch {
	case !found:
		return shared.NotFoundf("department", "RenameGroup", "Group %s not found in department %s.", name, d.Name())
	case !free:
		return shared.Duplicatef("department", "RenameGroup", "Group %s already exists in department %s.", to.Name(), d.Name())
	}
	return nil
}

// FindGroup returns the group with the given name, if any. The name is
// normalized first, so "a1" finds "A1".
func (d *Department) FindGroup(name string) (*Group, bool) {
	key, ok := lookupName(name)
	if !ok {
		return nil, false
	}
	return d.groups.find(key)
}

// Snapshot returns the persisted form of the department.
func (d *Department) Snapshot() DepartmentSnapshot {
	return DepartmentSnapshot{
		Name:   ref(d.Name()),
		Groups: snapshotAll(d.groups.items, (*Group).Snapshot),
	}
}

// DepartmentFromSnapshot rebuilds a department, re-checking group uniqueness.
func DepartmentFromSnapshot(snap DepartmentSnapshot) (*Department, error) {
	if snap.Name == nil {
		return nil, missingKey("department", "name")
	}
	d, err := NewDepartment(*snap.Name)
	if err != nil {
		return nil, err
	}
	if err := restoreAll(snap.Groups, GroupFromSnapshot, d.AddGroup); err != nil {
		return nil, err
	}
	return d, nil
}

// String renders e.g. "Department Cs: A1, B2".
func (d *Department) String() string {
	return fmt.Sprintf("Department %s: %s", d.Name(), joinOr(namesOf(d.groups.items), "No groups"))
}

// lookupName normalizes a lookup key. A blank key matches nothing.
func lookupName(raw string) (string, bool) {
	name, err := shared.NormalizeName(raw)
	if err != nil {
		return "", false
	}
	return name, true
}

type hasName interface {
	Name() string
}

func namesOf[C hasName](items []C) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name())
	}
	return out
}
