package institute

import (
	"fmt"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Faculty holds departments, unique by name.
type Faculty struct {
	named       shared.Named
	departments keyedList[string, *Department]
}

// NewFaculty builds an empty faculty.
func NewFaculty(name string) (*Faculty, error) {
	named, err := shared.NewNamed(name)
	if err != nil {
		return nil, err
	}
	return &Faculty{
		named:       named,
		departments: newKeyedList(func(d *Department) string { return d.Name() }),
	}, nil
}

// Name returns the faculty name. Renaming goes through Course.RenameFaculty so
// sibling names stay unique.
func (f *Faculty) Name() string { return f.named.Name() }

// Departments returns the departments in insertion order.
func (f *Faculty) Departments() []*Department {
	return f.departments.snapshot()
}

// AddDepartment appends a department whose name is not yet taken.
func (f *Faculty) AddDepartment(d *Department) error {
	if !f.departments.add(d) {
		return shared.Duplicatef("faculty", "AddDepartment", "Department %s already exists in faculty %s.", d.Name(), f.Name())
	}
	return nil
}

// ExtendDepartments adds departments in order, stopping at the first failure.
func (f *Faculty) ExtendDepartments(departments []*Department) error {
	return extend(departments, f.AddDepartment)
}

// RemoveDepartment removes the department with the given name.
func (f *Faculty) RemoveDepartment(name string) error {
	key, ok := lookupName(name)
	if !ok || !f.departments.remove(key) {
		return shared.NotFoundf("faculty", "RemoveDepartment", "Department %s not found in faculty %s.", name, f.Name())
	}
	return nil
}

// RenameDepartment renames the department called name to newName, refusing a
// name another department of the faculty already has.
func (f *Faculty) RenameDepartment(name, newName string) error {
	to, err := shared.NewNamed(newName)
	if err != nil {
		return err
	}
	key, _ := lookupName(name)
	found, free := f.departments.rekey(key, to.Name(), func(d *Department) { d.named = to })
	switch {
	case !found:
		return shared.NotFoundf("faculty", "RenameDepartment", "Department %s not found in faculty %s.", name, f.Name())
	case !free:
		return shared.Duplicatef("faculty", "RenameDepartment", "Department %s already exists in faculty %s.", to.Name(), f.Name())
	}
	return nil
}

// FindDepartment returns the department with the given name, if any.
func (f *Faculty) FindDepartment(name string) (*Department, bool) {
	key, ok := lookupName(name)
	if !ok {
		return nil, false
	}
	return f.departments.find(key)
}

// Snapshot returns the persisted form of the faculty.
func (f *Faculty) Snapshot() FacultySnapshot {
	return FacultySnapshot{
		Name:        ref(f.Name()),
		Departments: snapshotAll(f.departments.items, (*Department).Snapshot),
	}
}

// FacultyFromSnapshot rebuilds a faculty, re-checking department uniqueness.
func FacultyFromSnapshot(snap FacultySnapshot) (*Faculty, error) {
	if snap.Name == nil {
		return nil, missingKey("faculty", "name")
	}
	f, err := NewFaculty(*snap.Name)
	if err != nil {
		return nil, err
	}
	if err := restoreAll(snap.Departments, DepartmentFromSnapshot, f.AddDepartment); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Faculty) String() string {
	return fmt.Sprintf("Faculty %s: %s", f.Name(), joinOr(namesOf(f.departments.items), "No departments"))
}
