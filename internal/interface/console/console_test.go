package console

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/institute-hub/internal/application/registry"
	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/file"
)

func lines(answers ...string) *strings.Reader {
	return strings.NewReader(strings.Join(answers, "\n") + "\n")
}

// session runs a console over a fresh file store and returns what it printed
// and the store.
func session(t *testing.T, store *file.Store, input *strings.Reader) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(registry.NewService(store), input, &out, WithLocation(store.Path()))
	err := c.Run(context.Background())
	return out.String(), err
}

func newStore(t *testing.T) *file.Store {
	t.Helper()
	return file.NewStore(filepath.Join(t.TempDir(), "institute_data.json"), nil)
}

// seeded saves Tech U / course 1 / Engineering / Computer Science / A1 / s1.
func seeded(t *testing.T) *file.Store {
	t.Helper()
	store := newStore(t)
	inst, err := institute.New("Tech U")
	require.NoError(t, err)
	course, err := institute.NewCourse("Freshman", 1)
	require.NoError(t, err)
	faculty, err := institute.NewFaculty("Engineering")
	require.NoError(t, err)
	department, err := institute.NewDepartment("Computer Science")
	require.NoError(t, err)
	group, err := institute.NewGroup("A1")
	require.NoError(t, err)
	student, err := institute.NewStudent(institute.NewStudentParams{
		FirstName: "Ann", LastName: "Lee", StudentID: "s1", AverageGrade: 88.5,
	})
	require.NoError(t, err)
	require.NoError(t, inst.AddCourse(course))
	require.NoError(t, course.AddFaculty(faculty))
	require.NoError(t, faculty.AddDepartment(department))
	require.NoError(t, department.AddGroup(group))
	require.NoError(t, group.AddStudent(student))
	require.NoError(t, store.Save(context.Background(), inst))
	return store
}

func load(t *testing.T, store *file.Store) *institute.Institute {
	t.Helper()
	inst, err := store.Load(context.Background())
	require.NoError(t, err)
	return inst
}

func TestConsole_BuildHierarchy(t *testing.T) {
	store := newStore(t)
	out, err := session(t, store, lines(
		"tech u",
		"2", "Freshman", "1",
		"4", "1", "engineering",
		"6", "1", "Engineering", "computer science",
		"8", "1", "engineering", "COMPUTER SCIENCE", "a1",
		"10", "1", "engineering", "computer science", "a1", "ann", "lee", " s1 ", "abc", "150", "88.5",
		"1",
		"0",
	))
	require.NoError(t, err)

	assert.Contains(t, out, "==== Institute Management ====")
	assert.Contains(t, out, "Course added.")
	assert.Contains(t, out, "Faculty added.")
	assert.Contains(t, out, "Department added.")
	assert.Contains(t, out, "Group added.")
	assert.Contains(t, out, "Please enter a valid number.")
	assert.Contains(t, out, "Value must be between 0.0 and 100.0.")
	assert.Contains(t, out, "Student added.")
	assert.Contains(t, out, "=== Institute Overview ===\nInstitute Tech U with courses:\nCourse 1 (Freshman): Engineering\n")
	assert.Contains(t, out, "Data saved to "+store.Path())
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))

	inst := load(t, store)
	course, _ := inst.FindCourse(1)
	faculty, _ := course.FindFaculty("Engineering")
	department, _ := faculty.FindDepartment("Computer Science")
	group, ok := department.FindGroup("A1")
	require.True(t, ok)
	student, ok := group.FindStudent("s1")
	require.True(t, ok)
	assert.Equal(t, "Ann", student.FirstName())
	assert.Equal(t, 88.5, student.AverageGrade())
}

func TestConsole_Rejections(t *testing.T) {
	store := seeded(t)
	out, err := session(t, store, lines(
		"2", "", "x", "1",
		"4", "3",
		"5", "1", "law",
		"6", "1", "law",
		"8", "1", "engineering", "physics",
		"10", "1", "engineering", "computer science", "b2",
		"10", "1", "engineering", "computer science", "a1", "Bo", "Kim", "s1", "70",
		"11", "1", "engineering", "computer science", "a1", "s9",
		"3", "4",
		"99",
		"0",
	))
	require.NoError(t, err)

	assert.Contains(t, out, "Please enter a valid integer.")
	assert.Contains(t, out, "Failed to add course: Course number 1 already exists in the institute.")
	assert.Contains(t, out, "Course 3 not found.")
	assert.Contains(t, out, "Faculty law not found in course 1.")
	assert.Contains(t, out, "Department physics not found in faculty Engineering.")
	assert.Contains(t, out, "Group b2 not found in department Computer Science.")
	assert.Contains(t, out, "Failed to add student: Student with ID s1 already in group A1.")
	assert.Contains(t, out, "Student with ID s9 not found in group A1.")
	assert.Contains(t, out, "Course number 4 not found in the institute.")
	assert.Contains(t, out, "Unknown option. Please try again.")
}

func TestConsole_RemoveAll(t *testing.T) {
	store := seeded(t)
	_, err := session(t, store, lines(
		"11", "1", "engineering", "computer science", "a1", "s1",
		"9", "1", "engineering", "computer science", "a1",
		"7", "1", "engineering", "computer science",
		"5", "1", "ENGINEERING",
		"3", "1",
		"0",
	))
	require.NoError(t, err)
	assert.Empty(t, load(t, store).Courses())
}

func TestConsole_UpdateGradeAndRename(t *testing.T) {
	store := seeded(t)
	out, err := session(t, store, lines(
		"13", "1", "engineering", "computer science", "a1", "s1", "101", "91",
		"14", "1", "tech university",
		"14", "3", "1", "engineering", "applied engineering",
		"14", "5", "1", "applied engineering", "computer science", "a1", "",
		"14", "9",
		"0",
	))
	require.NoError(t, err)

	assert.Contains(t, out, "Grade updated.")
	assert.Contains(t, out, "Institute renamed.")
	assert.Contains(t, out, "Faculty renamed.")
	assert.Contains(t, out, "name cannot be empty")

	inst := load(t, store)
	assert.Equal(t, "Tech University", inst.Name())
	course, _ := inst.FindCourse(1)
	faculty, ok := course.FindFaculty("Applied Engineering")
	require.True(t, ok)
	department, _ := faculty.FindDepartment("Computer Science")
	group, ok := department.FindGroup("A1")
	require.True(t, ok, "blank rename keeps the old name")
	student, _ := group.FindStudent("s1")
	assert.Equal(t, 91.0, student.AverageGrade())
}

func TestConsole_RenameToSiblingName(t *testing.T) {
	store := seeded(t)
	out, err := session(t, store, lines(
		"8", "1", "engineering", "computer science", "b2",
		"14", "5", "1", "engineering", "computer science", "b2", "a1",
		"0",
	))
	require.NoError(t, err)

	assert.Contains(t, out, "Group A1 already exists in department Computer Science.")
	assert.NotContains(t, out, "Group renamed.")

	inst := load(t, store)
	course, _ := inst.FindCourse(1)
	faculty, _ := course.FindFaculty("Engineering")
	department, _ := faculty.FindDepartment("Computer Science")
	assert.Equal(t, "Department Computer Science: A1, B2", department.String())
}

func TestConsole_HistoryUnsupported(t *testing.T) {
	out, err := session(t, seeded(t), lines("15", "0"))
	require.NoError(t, err)
	assert.Contains(t, out, "This storage backend keeps only the latest data.")
}

func TestConsole_EndOfInputSaves(t *testing.T) {
	t.Run("at the menu", func(t *testing.T) {
		store := newStore(t)
		out, err := session(t, store, strings.NewReader(""))
		require.NoError(t, err)
		assert.Contains(t, out, "Goodbye!")
		assert.Equal(t, "My Institute", load(t, store).Name())
	})

	t.Run("inside a flow", func(t *testing.T) {
		store := seeded(t)
		out, err := session(t, store, strings.NewReader("2\nSophomore\n"))
		require.NoError(t, err)
		assert.Contains(t, out, "Goodbye!")
		assert.Len(t, load(t, store).Courses(), 1)
	})
}

// revisionRepo is a file store that also reports saved revisions.
type revisionRepo struct {
	*file.Store
	revisions []document.Revision
}

func (r revisionRepo) History(_ context.Context, limit int) ([]document.Revision, error) {
	if limit < len(r.revisions) {
		return r.revisions[:limit], nil
	}
	return r.revisions, nil
}

func TestConsole_History(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := revisionRepo{Store: seeded(t), revisions: []document.Revision{
		{ID: "rev-2", InstituteName: "Tech U", Format: "json", SavedAt: now.Add(-5 * time.Minute)},
		{ID: "rev-1", InstituteName: "Tech", Format: "json", SavedAt: now.Add(-26 * time.Hour)},
	}}

	var out bytes.Buffer
	c := New(registry.NewService(repo), lines("15", "0"), &out)
	c.now = func() time.Time { return now }
	c.loc = time.UTC
	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, out.String(), "2024-03-15 11:55:00 (5 min ago)  rev-2  Tech U [json]\n")
	assert.Contains(t, out.String(), "2024-03-14 10:00:00 (yesterday)  rev-1  Tech [json]\n")
}

func TestConsole_HistoryEmpty(t *testing.T) {
	var out bytes.Buffer
	c := New(registry.NewService(revisionRepo{Store: newStore(t)}), lines("x", "15", "0"), &out)
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), "No saved revisions.")
}

type failingRepo struct{}

func (failingRepo) Load(context.Context) (*institute.Institute, error) {
	return nil, institute.ErrDocumentNotFound
}

func (failingRepo) Save(context.Context, *institute.Institute) error {
	return errors.New("read-only file system")
}

func TestConsole_SaveFailure(t *testing.T) {
	var out bytes.Buffer
	c := New(registry.NewService(failingRepo{}), lines("x", "12", "0"), &out)

	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "read-only file system")
	assert.Equal(t, 2, strings.Count(out.String(), "Failed to save data:"))
	assert.NotContains(t, out.String(), "Goodbye!")
	assert.Equal(t, "X", c.Institute().Name())
}
