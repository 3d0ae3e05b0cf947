package institute

import (
	"fmt"
	"strings"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Grade boundaries, inclusive.
const (
	MinGrade = 0.0
	MaxGrade = 100.0
)

// Student is the leaf of the tree.
type Student struct {
	firstName    string
	lastName     string
	id           string
	averageGrade float64
}

// NewStudentParams holds the raw input for a new student.
type NewStudentParams struct {
	FirstName    string
	LastName     string
	StudentID    string
	AverageGrade float64
}

// NewStudent validates params and builds a Student. Names are trimmed and
// title-cased. The ID is only trimmed and must not end up empty.
func NewStudent(params NewStudentParams) (*Student, error) {
	firstName, err := validatePersonName(params.FirstName, "first name")
	if err != nil {
		return nil, err
	}

	lastName, err := validatePersonName(params.LastName, "last name")
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(params.StudentID)
	if id == "" {
		return nil, shared.WrapError("student", "Validate", shared.ErrValidation,
			"Student ID cannot be empty.", shared.ErrEmptyValue)
	}

	if err := validateGrade(params.AverageGrade); err != nil {
		return nil, err
	}

	return &Student{
		firstName:    firstName,
		lastName:     lastName,
		id:           id,
		averageGrade: params.AverageGrade,
	}, nil
}

func validatePersonName(raw, field string) (string, error) {
	name, err := shared.NormalizeName(raw)
	if err != nil {
		return "", shared.WrapError("student", "Validate", shared.ErrValidation,
			fmt.Sprintf("Student %s cannot be empty.", field), shared.ErrEmptyValue)
	}
	return name, nil
}

func validateGrade(grade float64) error {
	// Written as a negated range check so NaN is rejected too.
	if !(grade >= MinGrade && grade <= MaxGrade) {
		return shared.WrapError("student", "Validate", shared.ErrValidation,
			"Average grade must be between 0 and 100.", shared.ErrValueOutOfRange)
	}
	return nil
}

// FirstName returns the normalized first name.
func (s *Student) FirstName() string { return s.firstName }

// LastName returns the normalized last name.
func (s *Student) LastName() string { return s.lastName }

// ID returns the trimmed student ID.
func (s *Student) ID() string { return s.id }

// AverageGrade returns the current average grade.
func (s *Student) AverageGrade() float64 { return s.averageGrade }

// UpdateGrade sets a new average grade. An out-of-range grade is rejected and
// the old one kept.
func (s *Student) UpdateGrade(grade float64) error {
	if err := validateGrade(grade); err != nil {
		return err
	}
	s.averageGrade = grade
	return nil
}

// Snapshot returns the persisted form of the student.
func (s *Student) Snapshot() StudentSnapshot {
	return StudentSnapshot{
		FirstName:    ref(s.firstName),
		LastName:     ref(s.lastName),
		StudentID:    ref(s.id),
		AverageGrade: ref(s.averageGrade),
	}
}

// StudentFromSnapshot rebuilds a student. A missing average grade defaults to
// zero; missing names or ID fail.
func StudentFromSnapshot(snap StudentSnapshot) (*Student, error) {
	switch {
	case snap.FirstName == nil:
		return nil, missingKey("student", "first_name")
	case snap.LastName == nil:
		return nil, missingKey("student", "last_name")
	case snap.StudentID == nil:
		return nil, missingKey("student", "student_id")
	}

	grade := 0.0
	if snap.AverageGrade != nil {
		grade = *snap.AverageGrade
	}

	return NewStudent(NewStudentParams{
		FirstName:    *snap.FirstName,
		LastName:     *snap.LastName,
		StudentID:    *snap.StudentID,
		AverageGrade: grade,
	})
}

// String renders e.g. "Ann Lee (ID: s1, Average Grade: 88.50)".
func (s *Student) String() string {
	return fmt.Sprintf("%s %s (ID: %s, Average Grade: %.2f)", s.firstName, s.lastName, s.id, s.averageGrade)
}
