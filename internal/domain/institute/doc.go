// Package institute contains the domain model of an institute: a strict
// five-level containment tree
//
//	Institute → Course → Faculty → Department → Group → Student
//
// # Invariants
//
// Every level except Student carries a display name that is trimmed and
// title-cased on construction and on rename, so "math" and "MATH" are the same
// name. Children are unique among their siblings by a natural key:
//
//   - Student: trimmed student ID (case preserved)
//   - Group, Department, Faculty: normalized name
//   - Course: course number (1-6)
//
// Faculties, departments and groups are renamed through their parent
// (RenameFaculty, RenameDepartment, RenameGroup), which refuses a name a
// sibling already has. A rejected Add or rename leaves the parent unchanged.
// Containers hand out copies of their child lists; the only way to change a
// list is through Add, Extend, Remove and the parent renames.
//
// # Persistence
//
// Snapshot and the *FromSnapshot constructors convert the tree to and from
// plain structs that mirror the persisted document:
//
//	inst, err := institute.New("Tech U")
//	course, err := institute.NewCourse("Freshman", 1)
//	err = inst.AddCourse(course)
//	doc := inst.Snapshot()
//	restored, err := institute.FromSnapshot(doc)
//
// Decoding re-runs every validation, so a document with duplicate siblings or
// out-of-range values fails instead of producing an invalid tree.
//
// The package never logs or prints; callers decide how to report errors.
package institute
