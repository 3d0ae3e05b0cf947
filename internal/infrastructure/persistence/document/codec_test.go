package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
)

func sampleInstitute(t *testing.T) *institute.Institute {
	t.Helper()
	inst, err := institute.New("Tech U")
	require.NoError(t, err)
	course, err := institute.NewCourse("Freshman", 1)
	require.NoError(t, err)
	faculty, err := institute.NewFaculty("Engineering")
	require.NoError(t, err)
	department, err := institute.NewDepartment("CS")
	require.NoError(t, err)
	group, err := institute.NewGroup("A1")
	require.NoError(t, err)
	student, err := institute.NewStudent(institute.NewStudentParams{
		FirstName: "ann", LastName: "lee", StudentID: " s1 ", AverageGrade: 88.5,
	})
	require.NoError(t, err)

	require.NoError(t, inst.AddCourse(course))
	require.NoError(t, course.AddFaculty(faculty))
	require.NoError(t, faculty.AddDepartment(department))
	require.NoError(t, department.AddGroup(group))
	require.NoError(t, group.AddStudent(student))

	empty, err := institute.NewCourse("Senior", 6)
	require.NoError(t, err)
	require.NoError(t, inst.AddCourse(empty))
	return inst
}

func TestCodecs_RoundTrip(t *testing.T) {
	inst := sampleInstitute(t)

	for _, codec := range []Codec{JSON{}, YAML{}, MsgPack{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := Encode(codec, inst)
			require.NoError(t, err)

			restored, err := Decode(codec, data)
			require.NoError(t, err)
			assert.Equal(t, inst.Snapshot(), restored.Snapshot())
		})
	}
}

func TestJSON_Layout(t *testing.T) {
	inst, err := institute.New("Tech U")
	require.NoError(t, err)
	course, err := institute.NewCourse("Freshman", 1)
	require.NoError(t, err)
	require.NoError(t, inst.AddCourse(course))

	data, err := JSON{}.Marshal(inst.Snapshot())
	require.NoError(t, err)

	want := `{
  "name": "Tech U",
  "courses": [
    {
      "name": "Freshman",
      "number": 1,
      "faculties": []
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestJSON_DecodeDefaultsAndFailures(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		inst, err := Decode(JSON{}, []byte(`{
			"name": "tech u",
			"courses": [{"number": 2, "faculties": [{"name": "law", "departments": [
				{"name": "civil", "groups": [{"name": "l1", "students": [
					{"first_name": "bo", "last_name": "kim", "student_id": "x"}
				]}]}
			]}]}]
		}`))
		require.NoError(t, err)

		course, ok := inst.FindCourse(2)
		require.True(t, ok)
		assert.Equal(t, "Course 2", course.Name())
		faculty, _ := course.FindFaculty("law")
		department, _ := faculty.FindDepartment("civil")
		group, _ := department.FindGroup("l1")
		student, ok := group.FindStudent("x")
		require.True(t, ok)
		assert.Equal(t, 0.0, student.AverageGrade())
	})

	t.Run("missing children decode as empty", func(t *testing.T) {
		inst, err := Decode(JSON{}, []byte(`{"name": "tech u"}`))
		require.NoError(t, err)
		assert.Empty(t, inst.Courses())
	})

	t.Run("missing top-level name", func(t *testing.T) {
		_, err := Decode(JSON{}, []byte(`{"courses": []}`))
		assert.True(t, shared.IsDecode(err))
	})

	t.Run("mistyped number", func(t *testing.T) {
		_, err := Decode(JSON{}, []byte(`{"name": "x", "courses": [{"number": "one"}]}`))
		assert.True(t, shared.IsDecode(err))
	})

	t.Run("whole-valued float number", func(t *testing.T) {
		inst, err := Decode(JSON{}, []byte(`{"name": "x", "courses": [{"name": "freshman", "number": 1.0}, {"number": 2.9}]}`))
		require.NoError(t, err)
		course, ok := inst.FindCourse(1)
		require.True(t, ok)
		assert.Equal(t, "Freshman", course.Name())
		_, ok = inst.FindCourse(2)
		assert.True(t, ok, "fractions truncate toward zero")
	})

	t.Run("null number", func(t *testing.T) {
		_, err := Decode(JSON{}, []byte(`{"name": "x", "courses": [{"number": null}]}`))
		assert.True(t, shared.IsDecode(err))
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Decode(JSON{}, []byte(`<institute/>`))
		assert.True(t, shared.IsDecode(err))
	})

	t.Run("duplicate course numbers", func(t *testing.T) {
		_, err := Decode(JSON{}, []byte(`{"name": "x", "courses": [{"number": 1}, {"number": 1}]}`))
		assert.True(t, shared.IsAlreadyExists(err))
	})
}

func TestYAML_MissingName(t *testing.T) {
	_, err := Decode(YAML{}, []byte("courses: []\n"))
	assert.True(t, shared.IsDecode(err))
}

func TestYAML_FloatCourseNumber(t *testing.T) {
	inst, err := Decode(YAML{}, []byte("name: x\ncourses:\n  - number: 1.0\n"))
	require.NoError(t, err)
	_, ok := inst.FindCourse(1)
	assert.True(t, ok)
}

func TestSelection(t *testing.T) {
	assert.Equal(t, "yaml", ForPath("data/institute.YML").Name())
	assert.Equal(t, "msgpack", ForPath("institute.msgpack").Name())
	assert.Equal(t, "json", ForPath("institute_data.json").Name())
	assert.Equal(t, "json", ForPath("institute").Name())

	c, err := ByName("YAML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Name())
	c, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())
	_, err = ByName("xml")
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("one"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest([]byte("one")))
	assert.NotEqual(t, a, Digest([]byte("two")))
}

func TestRevision(t *testing.T) {
	inst := sampleInstitute(t)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("ALMT", 5*3600))

	rev, err := NewRevision(YAML{}, inst, now)
	require.NoError(t, err)
	assert.Len(t, rev.ID, 36)
	assert.Equal(t, "Tech U", rev.InstituteName)
	assert.Equal(t, "yaml", rev.Format)
	assert.Equal(t, Digest(rev.Body), rev.Digest)
	assert.Equal(t, time.UTC, rev.SavedAt.Location())

	restored, err := rev.Decode()
	require.NoError(t, err)
	assert.Equal(t, inst.Snapshot(), restored.Snapshot())

	rev.Format = "xml"
	_, err = rev.Decode()
	assert.True(t, shared.IsDecode(err))
}
