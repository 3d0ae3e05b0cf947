// Package registry is the application layer over one institute document: it
// opens the document (or starts a fresh one), saves it, and resolves the
// course → faculty → department → group path an operator types in.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
	"github.com/alem-hub/institute-hub/pkg/logger"
)

// DefaultInstituteName names a fresh institute when no name is given.
const DefaultInstituteName = "My Institute"

// ErrHistoryUnsupported is returned by History when the repository keeps only
// the latest document.
var ErrHistoryUnsupported = errors.New("registry: repository does not keep revision history")

// RevisionLister is implemented by repositories that keep every saved revision.
type RevisionLister interface {
	History(ctx context.Context, limit int) ([]document.Revision, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Service coordinates the repository with the operator-facing flows.
type Service struct {
	repo        institute.Repository
	log         *logger.Logger
	defaultName string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultName overrides DefaultInstituteName.
func WithDefaultName(name string) Option {
	return func(s *Service) {
		if strings.TrimSpace(name) != "" {
			s.defaultName = name
		}
	}
}

// NewService creates a Service over repo.
func NewService(repo institute.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		log:         logger.NewNop(),
		defaultName: DefaultInstituteName,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("registry"))
	return s
}

// Open loads the saved institute. When nothing was saved yet, or the saved
// document cannot be used, a fresh institute is created with the name
// returned by fallbackName. A blank answer falls back to the default name.
// Infrastructure failures are returned as errors.
func (s *Service) Open(ctx context.Context, fallbackName func() string) (*institute.Institute, error) {
	inst, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.log.Info("institute loaded",
			logger.InstituteName(inst.Name()),
			logger.Int("courses", len(inst.Courses())),
		)
		return inst, nil
	case errors.Is(err, institute.ErrDocumentNotFound):
		s.log.Info("no saved institute, starting fresh")
	case shared.IsDomain(err):
		s.log.Warn("failed to load institute data, starting fresh", logger.Err(err))
	default:
		return nil, fmt.Errorf("registry: load institute: %w", err)
	}

	name := ""
	if fallbackName != nil {
		name = fallbackName()
	}
	if strings.TrimSpace(name) == "" {
		name = s.defaultName
	}

	inst, err = institute.New(name)
	if err != nil {
		return nil, err
	}
	s.log.Info("institute created", logger.InstituteName(inst.Name()))
	return inst, nil
}

// Save persists inst.
func (s *Service) Save(ctx context.Context, inst *institute.Institute) error {
	if err := s.repo.Save(ctx, inst); err != nil {
		s.log.Error("failed to save institute", logger.InstituteName(inst.Name()), logger.Err(err))
		return fmt.Errorf("registry: save institute: %w", err)
	}
	s.log.Info("institute saved", logger.InstituteName(inst.Name()))
	return nil
}

// History lists up to limit saved revisions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]document.Revision, error) {
	lister, ok := s.repo.(RevisionLister)
	if !ok {
		return nil, ErrHistoryUnsupported
	}
	return lister.History(ctx, limit)
}

// ══════════════════════════════════════════════════════════════════════════════
// NAVIGATION
// ══════════════════════════════════════════════════════════════════════════════

// Course returns the course with number.
func Course(inst *institute.Institute, number int) (*institute.Course, error) {
	c, ok := inst.FindCourse(number)
	if !ok {
		return nil, shared.NotFoundf("registry", "Course", "Course %d not found.", number)
	}
	return c, nil
}

// Faculty returns the faculty of course matching name after normalization.
func Faculty(course *institute.Course, name string) (*institute.Faculty, error) {
	name = strings.TrimSpace(name)
	f, ok := course.FindFaculty(name)
	if !ok {
		return nil, shared.NotFoundf("registry", "Faculty", "Faculty %s not found in course %d.", name, course.Number())
	}
	return f, nil
}

// Department returns the department of faculty matching name.
func Department(faculty *institute.Faculty, name string) (*institute.Department, error) {
	name = strings.TrimSpace(name)
	d, ok := faculty.FindDepartment(name)
	if !ok {
		return nil, shared.NotFoundf("registry", "Department", "Department %s not found in faculty %s.", name, faculty.Name())
	}
	return d, nil
}

// Group returns the group of department matching name.
func Group(department *institute.Department, name string) (*institute.Group, error) {
	name = strings.TrimSpace(name)
	g, ok := department.FindGroup(name)
	if !ok {
		return nil, shared.NotFoundf("registry", "Group", "Group %s not found in department %s.", name, department.Name())
	}
	return g, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RENAMING
// ══════════════════════════════════════════════════════════════════════════════

// RenameFaculty renames faculty, refusing a name another faculty of course
// already has.
func RenameFaculty(course *institute.Course, faculty *institute.Faculty, name string) error {
	return course.RenameFaculty(faculty.Name(), name)
}

// RenameDepartment renames department, refusing a name another department of
// faculty already has.
func RenameDepartment(faculty *institute.Faculty, department *institute.Department, name string) error {
	return faculty.RenameDepartment(department.Name(), name)
}

// RenameGroup renames group, refusing a name another group of department
// already has.
func RenameGroup(department *institute.Department, group *institute.Group, name string) error {
	return department.RenameGroup(group.Name(), name)
}
