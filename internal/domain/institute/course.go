package institute

import (
	"fmt"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Course number boundaries, inclusive.
const (
	MinCourseNumber = 1
	MaxCourseNumber = 6
)

// Course is one study year. It holds faculties, unique by name, and is itself
// keyed by Number inside the institute.
type Course struct {
	shared.Named
	number    int
	faculties keyedList[string, *Faculty]
}

// NewCourse builds an empty course.
func NewCourse(name string, number int) (*Course, error) {
	named, err := shared.NewNamed(name)
	if err != nil {
		return nil, err
	}
	if err := validateCourseNumber(number); err != nil {
		return nil, err
	}
	return &Course{
		Named:     named,
		number:    number,
		faculties: newKeyedList(func(f *Faculty) string { return f.Name() }),
	}, nil
}

func validateCourseNumber(number int) error {
	if number < MinCourseNumber || number > MaxCourseNumber {
		return shared.WrapError("course", "Validate", shared.ErrValidation,
			"Course number must be between 1 and 6.", shared.ErrValueOutOfRange)
	}
	return nil
}

// Number returns the course number.
func (c *Course) Number() int { return c.number }

// Faculties returns the faculties in insertion order.
func (c *Course) Faculties() []*Faculty {
	return c.faculties.snapshot()
}

// AddFaculty appends a faculty whose name is not yet taken.
func (c *Course) AddFaculty(f *Faculty) error {
	if !c.faculties.add(f) {
		return shared.Duplicatef("course", "AddFaculty", "Faculty %s already exists in course %d.", f.Name(), c.number)
	}
	return nil
}

// ExtendFaculties adds faculties in order, stopping at the first failure.
func (c *Course) ExtendFaculties(faculties []*Faculty) error {
	return extend(faculties, c.AddFaculty)
}

// RemoveFaculty removes the faculty with the given name.
func (c *Course) RemoveFaculty(name string) error {
	key, ok := lookupName(name)
	if !ok || !c.faculties.remove(key) {
		return shared.NotFoundf("course", "RemoveFaculty", "Faculty %s not found in course %d.", name, c.number)
	}
	return nil
}

// RenameFaculty renames the faculty called name to newName, refusing a name
// another faculty of the course already has.
func (c *Course) RenameFaculty(name, newName string) error {
	to, err := shared.NewNamed(newName)
	if err != nil {
		return err
	}
	key, _ := lookupName(name)
	found, free := c.faculties.rekey(key, to.Name(), func(f *Faculty) { f.named = to })
	switch {
	case !found:
		return shared.NotFoundf("course", "RenameFaculty", "Faculty %s not found in course %d.", name, c.number)
	case !free:
		return shared.Duplicatef("course", "RenameFaculty", "Faculty %s already exists in course %d.", to.Name(), c.number)
	}
	return nil
}

// FindFaculty returns the faculty with the given name, if any.
func (c *Course) FindFaculty(name string) (*Faculty, bool) {
	key, ok := lookupName(name)
	if !ok {
		return nil, false
	}
	return c.faculties.find(key)
}

// Snapshot returns the persisted form of the course.
func (c *Course) Snapshot() CourseSnapshot {
	return CourseSnapshot{
		Name:      ref(c.Name()),
		Number:    ref(c.number),
		Faculties: snapshotAll(c.faculties.items, (*Faculty).Snapshot),
	}
}

// CourseFromSnapshot rebuilds a course. The number is required; a missing
// name becomes "Course <number>".
func CourseFromSnapshot(snap CourseSnapshot) (*Course, error) {
	if snap.Number == nil {
		return nil, missingKey("course", "number")
	}
	name := fmt.Sprintf("Course %d", *snap.Number)
	if snap.Name != nil {
		name = *snap.Name
	}
	c, err := NewCourse(name, *snap.Number)
	if err != nil {
		return nil, err
	}
	if err := restoreAll(snap.Faculties, FacultyFromSnapshot, c.AddFaculty); err != nil {
		return nil, err
	}
	return c, nil
}

// String renders e.g. "Course 1 (Freshman): Engineering".
func (c *Course) String() string {
	return fmt.Sprintf("Course %d (%s): %s", c.number, c.Name(), joinOr(namesOf(c.faculties.items), "No faculties"))
}
