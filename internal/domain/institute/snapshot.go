package institute

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

// Snapshot types mirror the persisted document one level at a time. Scalar
// fields are pointers so a decoder can tell an absent key from a zero value.

// InstituteSnapshot is the whole persisted document.
type InstituteSnapshot struct {
	Name    *string          `json:"name" yaml:"name" msgpack:"name"`
	Courses []CourseSnapshot `json:"courses" yaml:"courses" msgpack:"courses"`
}

// CourseSnapshot is the persisted form of a Course.
type CourseSnapshot struct {
	Name      *string           `json:"name" yaml:"name" msgpack:"name"`
	Number    *int              `json:"number" yaml:"number" msgpack:"number"`
	Faculties []FacultySnapshot `json:"faculties" yaml:"faculties" msgpack:"faculties"`
}

// UnmarshalJSON accepts a fractional course number such as 1.0 and truncates
// it toward zero, as YAML decoding already does.
func (s *CourseSnapshot) UnmarshalJSON(data []byte) error {
	type plain CourseSnapshot
	aux := struct {
		*plain
		Number *float64 `json:"number"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Number = nil
	if aux.Number != nil {
		f := math.Trunc(*aux.Number)
		if f < math.MinInt32 || f > math.MaxInt32 {
			return fmt.Errorf("course number %v out of range", *aux.Number)
		}
		s.Number = ref(int(f))
	}
	return nil
}

// FacultySnapshot is the persisted form of a Faculty.
type FacultySnapshot struct {
	Name        *string              `json:"name" yaml:"name" msgpack:"name"`
	Departments []DepartmentSnapshot `json:"departments" yaml:"departments" msgpack:"departments"`
}

// DepartmentSnapshot is the persisted form of a Department.
type DepartmentSnapshot struct {
	Name   *string         `json:"name" yaml:"name" msgpack:"name"`
	Groups []GroupSnapshot `json:"groups" yaml:"groups" msgpack:"groups"`
}

// GroupSnapshot is the persisted form of a Group.
type GroupSnapshot struct {
	Name     *string           `json:"name" yaml:"name" msgpack:"name"`
	Students []StudentSnapshot `json:"students" yaml:"students" msgpack:"students"`
}

// StudentSnapshot is the persisted form of a Student.
type StudentSnapshot struct {
	FirstName    *string  `json:"first_name" yaml:"first_name" msgpack:"first_name"`
	LastName     *string  `json:"last_name" yaml:"last_name" msgpack:"last_name"`
	StudentID    *string  `json:"student_id" yaml:"student_id" msgpack:"student_id"`
	AverageGrade *float64 `json:"average_grade" yaml:"average_grade" msgpack:"average_grade"`
}

func ref[T any](v T) *T {
	return &v
}

func missingKey(domain, key string) error {
	return shared.Decodef(domain, "missing required key %q", key)
}

// snapshotAll maps each child to its snapshot. The result is never nil so an
// empty level is written as [] rather than null.
func snapshotAll[C any, S any](items []C, fn func(C) S) []S {
	out := make([]S, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// restoreAll decodes each child snapshot and adds it to the parent in order.
func restoreAll[S any, C any](snaps []S, decode func(S) (C, error), add func(C) error) error {
	for _, snap := range snaps {
		child, err := decode(snap)
		if err != nil {
			return err
		}
		if err := add(child); err != nil {
			return err
		}
	}
	return nil
}
