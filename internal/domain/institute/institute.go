package institute

import (
	"fmt"
	"strings"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Institute is the aggregate root and the unit of persistence. It holds
// courses, unique by number.
type Institute struct {
	shared.Named
	courses keyedList[int, *Course]
}

// New builds an empty institute.
func New(name string) (*Institute, error) {
	named, err := shared.NewNamed(name)
	if err != nil {
		return nil, err
	}
	return &Institute{
		Named:   named,
		courses: newKeyedList(func(c *Course) int { return c.number }),
	}, nil
}

// Courses returns the courses in insertion order.
func (i *Institute) Courses() []*Course {
	return i.courses.snapshot()
}

// AddCourse appends a course whose number is not yet taken.
func (i *Institute) AddCourse(c *Course) error {
	if !i.courses.add(c) {
		return shared.Duplicatef("institute", "AddCourse", "Course number %d already exists in the institute.", c.number)
	}
	return nil
}

// ExtendCourses adds courses in order, stopping at the first failure.
func (i *Institute) ExtendCourses(courses []*Course) error {
	return extend(courses, i.AddCourse)
}

// RemoveCourse removes the course with the given number.
func (i *Institute) RemoveCourse(number int) error {
	if !i.courses.remove(number) {
		return shared.NotFoundf("institute", "RemoveCourse", "Course number %d not found in the institute.", number)
	}
	return nil
}

// FindCourse returns the course with the given number, if any.
func (i *Institute) FindCourse(number int) (*Course, bool) {
	return i.courses.find(number)
}

// Snapshot returns the full persisted document.
func (i *Institute) Snapshot() InstituteSnapshot {
	return InstituteSnapshot{
		Name:    ref(i.Name()),
		Courses: snapshotAll(i.courses.items, (*Course).Snapshot),
	}
}

// FromSnapshot rebuilds a whole institute. The top-level name is required.
func FromSnapshot(snap InstituteSnapshot) (*Institute, error) {
	if snap.Name == nil {
		return nil, missingKey("institute", "name")
	}
	inst, err := New(*snap.Name)
	if err != nil {
		return nil, err
	}
	if err := restoreAll(snap.Courses, CourseFromSnapshot, inst.AddCourse); err != nil {
		return nil, err
	}
	return inst, nil
}

// String renders the institute and, when there are any, one line per course.
func (i *Institute) String() string {
	if i.courses.len() == 0 {
		return fmt.Sprintf("Institute %s: no courses registered", i.Name())
	}
	lines := make([]string, 0, i.courses.len())
	for _, c := range i.courses.items {
		lines = append(lines, c.String())
	}
	return fmt.Sprintf("Institute %s with courses:\n%s", i.Name(), strings.Join(lines, "\n"))
}
