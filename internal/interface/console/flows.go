package console

import (
	"context"
	"errors"

	"github.com/alem-hub/institute-hub/internal/application/registry"
	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
	"github.com/alem-hub/institute-hub/pkg/logger"
	"github.com/alem-hub/institute-hub/pkg/timeutil"
)

// historyLimit is how many revisions menu entry 15 lists.
const historyLimit = 10

// ══════════════════════════════════════════════════════════════════════════════
// REPORTING
// ══════════════════════════════════════════════════════════════════════════════

// report prints the message of a rejected operation.
func (c *Console) report(err error) {
	c.p.println(shared.Message(err))
	c.log.Debug("operation rejected", logger.Err(err))
}

// failed prints "Failed to add <what>: <message>".
func (c *Console) failed(what string, err error) {
	c.p.printf("Failed to add %s: %s\n", what, shared.Message(err))
	c.log.Debug("operation rejected", logger.String("entity", what), logger.Err(err))
}

// ══════════════════════════════════════════════════════════════════════════════
// NAVIGATION
// ══════════════════════════════════════════════════════════════════════════════

// Each choose* returns nil with a nil error when the operator named something
// that does not exist; the reason has been printed already.

func (c *Console) chooseCourse() (*institute.Course, error) {
	number, err := c.p.integer("Enter course number (1-6): ")
	if err != nil {
		return nil, err
	}
	course, err := registry.Course(c.inst, number)
	if err != nil {
		c.report(err)
		return nil, nil
	}
	return course, nil
}

func (c *Console) chooseFaculty() (*institute.Course, *institute.Faculty, error) {
	course, err := c.chooseCourse()
	if course == nil {
		return nil, nil, err
	}
	name, err := c.p.trimmed("Enter faculty name: ")
	if err != nil {
		return nil, nil, err
	}
	faculty, err := registry.Faculty(course, name)
	if err != nil {
		c.report(err)
		return nil, nil, nil
	}
	return course, faculty, nil
}

func (c *Console) chooseDepartment() (*institute.Faculty, *institute.Department, error) {
	_, faculty, err := c.chooseFaculty()
	if faculty == nil {
		return nil, nil, err
	}
	name, err := c.p.trimmed("Enter department name: ")
	if err != nil {
		return nil, nil, err
	}
	department, err := registry.Department(faculty, name)
	if err != nil {
		c.report(err)
		return nil, nil, nil
	}
	return faculty, department, nil
}

func (c *Console) chooseGroup() (*institute.Department, *institute.Group, error) {
	_, department, err := c.chooseDepartment()
	if department == nil {
		return nil, nil, err
	}
	name, err := c.p.trimmed("Enter group name: ")
	if err != nil {
		return nil, nil, err
	}
	group, err := registry.Group(department, name)
	if err != nil {
		c.report(err)
		return nil, nil, nil
	}
	return department, group, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSES
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) addCourse(context.Context) error {
	name, err := c.p.trimmed("Course name: ")
	if err != nil {
		return err
	}
	if name == "" {
		name = "Unnamed Course"
	}
	number, err := c.p.integer("Course number (1-6): ")
	if err != nil {
		return err
	}

	course, err := institute.NewCourse(name, number)
	if err == nil {
		err = c.inst.AddCourse(course)
	}
	if err != nil {
		c.failed("course", err)
		return nil
	}
	c.p.println("Course added.")
	return nil
}

func (c *Console) removeCourse(context.Context) error {
	number, err := c.p.integer("Course number to remove: ")
	if err != nil {
		return err
	}
	if err := c.inst.RemoveCourse(number); err != nil {
		c.report(err)
		return nil
	}
	c.p.println("Course removed.")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// FACULTIES
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) addFaculty(context.Context) error {
	course, err := c.chooseCourse()
	if course == nil {
		return err
	}
	name, err := c.p.trimmed("Faculty name: ")
	if err != nil {
		return err
	}

	faculty, err := institute.NewFaculty(name)
	if err == nil {
		err = course.AddFaculty(faculty)
	}
	if err != nil {
		c.failed("faculty", err)
		return nil
	}
	c.p.println("Faculty added.")
	return nil
}

func (c *Console) removeFaculty(context.Context) error {
	course, err := c.chooseCourse()
	if course == nil {
		return err
	}
	name, err := c.p.trimmed("Faculty name to remove: ")
	if err != nil {
		return err
	}
	if err := course.RemoveFaculty(name); err != nil {
		c.report(err)
		return nil
	}
	c.p.println("Faculty removed.")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPARTMENTS
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) addDepartment(context.Context) error {
	_, faculty, err := c.chooseFaculty()
	if faculty == nil {
		return err
	}
	name, err := c.p.trimmed("Department name: ")
	if err != nil {
		return err
	}

	department, err := institute.NewDepartment(name)
	if err == nil {
		err = faculty.AddDepartment(department)
	}
	if err != nil {
		c.failed("department", err)
		return nil
	}
	c.p.println("Department added.")
	return nil
}

func (c *Console) removeDepartment(context.Context) error {
	_, faculty, err := c.chooseFaculty()
	if faculty == nil {
		return err
	}
	name, err := c.p.trimmed("Department name to remove: ")
	if err != nil {
		return err
	}
	if err := faculty.RemoveDepartment(name); err != nil {
		c.report(err)
		return nil
	}
	c.p.println("Department removed.")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUPS
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) addGroup(context.Context) error {
	_, department, err := c.chooseDepartment()
	if department == nil {
		return err
	}
	name, err := c.p.trimmed("Group name: ")
	if err != nil {
		return err
	}

	group, err := institute.NewGroup(name)
	if err == nil {
		err = department.AddGroup(group)
	}
	if err != nil {
		c.failed("group", err)
		return nil
	}
	c.p.println("Group added.")
	return nil
}

func (c *Console) removeGroup(context.Context) error {
	_, department, err := c.chooseDepartment()
	if department == nil {
		return err
	}
	name, err := c.p.trimmed("Group name to remove: ")
	if err != nil {
		return err
	}
	if err := department.RemoveGroup(name); err != nil {
		c.report(err)
		return nil
	}
	c.p.println("Group removed.")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) addStudent(context.Context) error {
	_, group, err := c.chooseGroup()
	if group == nil {
		return err
	}

	var params institute.NewStudentParams
	if params.FirstName, err = c.p.line("Student first name: "); err != nil {
		return err
	}
	if params.LastName, err = c.p.line("Student last name: "); err != nil {
		return err
	}
	if params.StudentID, err = c.p.line("Student ID: "); err != nil {
		return err
	}
	if params.AverageGrade, err = c.p.number("Average grade (0-100): ", institute.MinGrade, institute.MaxGrade); err != nil {
		return err
	}

	student, err := institute.NewStudent(params)
	if err == nil {
		err = group.AddStudent(student)
	}
	if err != nil {
		c.failed("student", err)
		return nil
	}
	c.log.Debug("student added", logger.StudentID(student.ID()))
	c.p.println("Student added.")
	return nil
}

func (c *Console) removeStudent(context.Context) error {
	_, group, err := c.chooseGroup()
	if group == nil {
		return err
	}
	id, err := c.p.trimmed("Student ID to remove: ")
	if err != nil {
		return err
	}
	if err := group.RemoveStudent(id); err != nil {
		c.report(err)
		return nil
	}
	c.p.println("Student removed.")
	return nil
}

func (c *Console) updateGrade(context.Context) error {
	_, group, err := c.chooseGroup()
	if group == nil {
		return err
	}
	id, err := c.p.trimmed("Student ID: ")
	if err != nil {
		return err
	}
	student, ok := group.FindStudent(id)
	if !ok {
		c.p.printf("Student with ID %s not found in group %s.\n", id, group.Name())
		return nil
	}
	grade, err := c.p.number("New average grade (0-100): ", institute.MinGrade, institute.MaxGrade)
	if err != nil {
		return err
	}
	if err := student.UpdateGrade(grade); err != nil {
		c.report(err)
		return nil
	}
	c.p.println("Grade updated.")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RENAMING
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) rename(context.Context) error {
	level, err := c.p.integer("Rename (1 institute, 2 course, 3 faculty, 4 department, 5 group): ")
	if err != nil {
		return err
	}

	var (
		apply func(name string) error
		what  string
	)
	switch level {
	case 1:
		what, apply = "Institute", c.inst.Rename
	case 2:
		course, err := c.chooseCourse()
		if course == nil {
			return err
		}
		what, apply = "Course", course.Rename
	case 3:
		course, faculty, err := c.chooseFaculty()
		if faculty == nil {
			return err
		}
		what = "Faculty"
		apply = func(name string) error { return registry.RenameFaculty(course, faculty, name) }
	case 4:
		faculty, department, err := c.chooseDepartment()
		if department == nil {
			return err
		}
		what = "Department"
		apply = func(name string) error { return registry.RenameDepartment(faculty, department, name) }
	case 5:
		department, group, err := c.chooseGroup()
		if group == nil {
			return err
		}
		what = "Group"
		apply = func(name string) error { return registry.RenameGroup(department, group, name) }
	default:
		c.p.println("Unknown option. Please try again.")
		return nil
	}

	name, err := c.p.trimmed("New name: ")
	if err != nil {
		return err
	}
	if err := apply(name); err != nil {
		c.report(err)
		return nil
	}
	c.p.printf("%s renamed.\n", what)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY
// ══════════════════════════════════════════════════════════════════════════════

func (c *Console) showHistory(ctx context.Context) error {
	revisions, err := c.svc.History(ctx, historyLimit)
	switch {
	case errors.Is(err, registry.ErrHistoryUnsupported):
		c.p.println("This storage backend keeps only the latest data.")
		return nil
	case err != nil:
		c.p.printf("Failed to read saved revisions: %v\n", err)
		return nil
	case len(revisions) == 0:
		c.p.println("No saved revisions.")
		return nil
	}

	now := c.now()
	for _, rev := range revisions {
		c.p.printf("%s (%s)  %s  %s [%s]\n",
			timeutil.FormatLocal(rev.SavedAt, c.loc, timeutil.FormatDateTimeSeconds),
			timeutil.FormatRelative(rev.SavedAt, now),
			rev.ID,
			rev.InstituteName,
			rev.Format,
		)
	}
	return nil
}
