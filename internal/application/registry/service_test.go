package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
	"github.com/alem-hub/institute-hub/pkg/logger"
)

// memoryRepo is an in-memory institute.Repository whose calls can fail.
type memoryRepo struct {
	snap      *institute.InstituteSnapshot
	loadErrs  []error
	saveErrs  []error
	loads     int
	saves     int
	revisions []document.Revision
}

func (m *memoryRepo) Load(ctx context.Context) (*institute.Institute, error) {
	m.loads++
	if len(m.loadErrs) > 0 {
		err := m.loadErrs[0]
		m.loadErrs = m.loadErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if m.snap == nil {
		return nil, institute.ErrDocumentNotFound
	}
	return institute.FromSnapshot(*m.snap)
}

func (m *memoryRepo) Save(ctx context.Context, inst *institute.Institute) error {
	m.saves++
	if len(m.saveErrs) > 0 {
		err := m.saveErrs[0]
		m.saveErrs = m.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	snap := inst.Snapshot()
	m.snap = &snap
	return nil
}

type historyRepo struct {
	memoryRepo
}

func (h *historyRepo) History(_ context.Context, limit int) ([]document.Revision, error) {
	if limit < len(h.revisions) {
		return h.revisions[:limit], nil
	}
	return h.revisions, nil
}

func observed() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewWithCore(core), logs
}

func fixedName(name string) func() string {
	return func() string { return name }
}

func buildInstitute(t *testing.T) *institute.Institute {
	t.Helper()
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

	require.NoError(t, inst.AddCourse(course))
	require.NoError(t, course.AddFaculty(faculty))
	require.NoError(t, faculty.AddDepartment(department))
	require.NoError(t, department.AddGroup(group))
	return inst
}

func TestService_OpenExisting(t *testing.T) {
	repo := &memoryRepo{}
	require.NoError(t, repo.Save(context.Background(), buildInstitute(t)))
	log, logs := observed()

	svc := NewService(repo, WithLogger(log))
	inst, err := svc.Open(context.Background(), func() string {
		t.Fatal("fallback must not be asked for")
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, "Tech U", inst.Name())
	assert.Equal(t, 1, logs.FilterMessage("institute loaded").Len())
}

func TestService_OpenFresh(t *testing.T) {
	tests := []struct {
		name     string
		fallback func() string
		want     string
	}{
		{"operator name", fixedName("  tech u "), "Tech U"},
		{"blank answer", fixedName("   "), DefaultInstituteName},
		{"no prompt", nil, DefaultInstituteName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&memoryRepo{})
			inst, err := svc.Open(context.Background(), tt.fallback)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inst.Name())
			assert.Empty(t, inst.Courses())
		})
	}
}

func TestService_OpenDefaultNameOption(t *testing.T) {
	svc := NewService(&memoryRepo{}, WithDefaultName("Campus"))
	inst, err := svc.Open(context.Background(), fixedName(""))
	require.NoError(t, err)
	assert.Equal(t, "Campus", inst.Name())
}

func TestService_OpenUnusableDocument(t *testing.T) {
	log, logs := observed()
	repo := &memoryRepo{loadErrs: []error{shared.Decodef("institute", "missing required key %q", "name")}}

	inst, err := NewService(repo, WithLogger(log)).Open(context.Background(), fixedName("fresh"))
	require.NoError(t, err)
	assert.Equal(t, "Fresh", inst.Name())

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "failed to load institute data, starting fresh", warnings[0].Message)
	assert.Equal(t, "registry", warnings[0].ContextMap()["component"])
}

func TestService_OpenInfrastructureFailure(t *testing.T) {
	repo := &memoryRepo{loadErrs: []error{errors.New("connection refused")}}

	_, err := NewService(repo).Open(context.Background(), fixedName("x"))
	assert.ErrorContains(t, err, "connection refused")
}

func TestService_Save(t *testing.T) {
	log, logs := observed()
	repo := &memoryRepo{}
	svc := NewService(repo, WithLogger(log))

	require.NoError(t, svc.Save(context.Background(), buildInstitute(t)))
	require.NotNil(t, repo.snap)
	assert.Equal(t, "Tech U", *repo.snap.Name)

	repo.saveErrs = []error{errors.New("disk full")}
	err := svc.Save(context.Background(), buildInstitute(t))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestService_History(t *testing.T) {
	_, err := NewService(&memoryRepo{}).History(context.Background(), 5)
	assert.ErrorIs(t, err, ErrHistoryUnsupported)

	repo := &historyRepo{}
	repo.revisions = []document.Revision{{ID: "b"}, {ID: "a"}}
	revisions, err := NewService(repo).History(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "b", revisions[0].ID)
}

func TestNavigation(t *testing.T) {
	inst := buildInstitute(t)

	course, err := Course(inst, 1)
	require.NoError(t, err)
	faculty, err := Faculty(course, "  engineering ")
	require.NoError(t, err)
	department, err := Department(faculty, "COMPUTER SCIENCE")
	require.NoError(t, err)
	group, err := Group(department, "a1")
	require.NoError(t, err)
	assert.Equal(t, "A1", group.Name())

	_, err = Course(inst, 3)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, "Course 3 not found.", shared.Message(err))

	_, err = Faculty(course, " law ")
	assert.Equal(t, "Faculty law not found in course 1.", shared.Message(err))

	_, err = Department(faculty, "physics")
	assert.Equal(t, "Department physics not found in faculty Engineering.", shared.Message(err))

	_, err = Group(department, "")
	assert.Equal(t, "Group  not found in department Computer Science.", shared.Message(err))
}

func TestRename(t *testing.T) {
	tests := []struct {
		name   string
		rename func(t *testing.T, newName string) (current func() string, err error)
	}{
		{
			name: "faculty",
			rename: func(t *testing.T, newName string) (func() string, error) {
				course, err := institute.NewCourse("Freshman", 1)
				require.NoError(t, err)
				math, err := institute.NewFaculty("Math")
				require.NoError(t, err)
				biology, err := institute.NewFaculty("Biology")
				require.NoError(t, err)
				require.NoError(t, course.ExtendFaculties([]*institute.Faculty{math, biology}))
				return biology.Name, RenameFaculty(course, biology, newName)
			},
		},
		{
			name: "department",
			rename: func(t *testing.T, newName string) (func() string, error) {
				faculty, err := institute.NewFaculty("Science")
				require.NoError(t, err)
				math, err := institute.NewDepartment("Math")
				require.NoError(t, err)
				biology, err := institute.NewDepartment("Biology")
				require.NoError(t, err)
				require.NoError(t, faculty.ExtendDepartments([]*institute.Department{math, biology}))
				return biology.Name, RenameDepartment(faculty, biology, newName)
			},
		},
		{
			name: "group",
			rename: func(t *testing.T, newName string) (func() string, error) {
				department, err := institute.NewDepartment("Cs")
				require.NoError(t, err)
				math, err := institute.NewGroup("Math")
				require.NoError(t, err)
				biology, err := institute.NewGroup("Biology")
				require.NoError(t, err)
				require.NoError(t, department.ExtendGroups([]*institute.Group{math, biology}))
				return biology.Name, RenameGroup(department, biology, newName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" sibling name taken", func(t *testing.T) {
			current, err := tt.rename(t, "math")
			require.Error(t, err)
			assert.True(t, shared.IsAlreadyExists(err))
			assert.Equal(t, "Biology", current())
		})

		t.Run(tt.name+" free name", func(t *testing.T) {
			current, err := tt.rename(t, " chemistry ")
			require.NoError(t, err)
			assert.Equal(t, "Chemistry", current())
		})

		t.Run(tt.name+" blank name", func(t *testing.T) {
			current, err := tt.rename(t, "  ")
			assert.True(t, shared.IsValidation(err))
			assert.Equal(t, "Biology", current())
		})
	}
}
