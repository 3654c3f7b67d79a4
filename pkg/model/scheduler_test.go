package model

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type countingRecorder struct {
	reports []GenerationReport
	scores  []float64
}

func (recorder *countingRecorder) ObserveGeneration(report GenerationReport, score float64) {
	recorder.reports = append(recorder.reports, report)
	recorder.scores = append(recorder.scores, score)
}

func TestGenerateScheduleSingleSection(t *testing.T) {
	for seed := range uint64(20) {
		//** Arrange
		scheduler := NewClassScheduler()
		teacher := NewTeacher("T1", "Dr. Smith")
		teacher.AddDefaultAvailability()
		course := NewCourse("CS101", "Intro to Programming", 3)
		course.AssignTeacher(teacher)
		section := NewSection("A", course)

		scheduler.AddTeacher(teacher)
		scheduler.AddCourse(course)
		scheduler.AddSection(section)

		//** Act
		valid := scheduler.GenerateSchedule(newRand(seed))

		//** Assert
		assert.True(t, valid)
		assert.True(t, scheduler.ValidateSchedule())
		require.Len(t, section.TimeSlots, 1)
		slot := section.TimeSlots[0]
		assert.Equal(t, 3, slot.Duration)
		assert.GreaterOrEqual(t, slot.Hour, 8)
		assert.LessOrEqual(t, slot.Hour, 15)
		assert.LessOrEqual(t, slot.End(), 18)
		assert.Equal(t, "T1", section.Teacher.Id)
	}
}

func TestGenerateScheduleSingleAvailableSlot(t *testing.T) {
	//** Arrange
	scheduler := NewClassScheduler()
	teacher := NewTeacher("T1", "Dr. Smith")
	teacher.AddAvailableTimeSlot(TimeSlot{Day: 0, Hour: 9, Duration: 1})
	course := NewCourse("CS101", "Intro to Programming", 1)
	course.AssignTeacher(teacher)
	first, second := NewSection("A", course), NewSection("B", course)

	scheduler.AddTeacher(teacher)
	scheduler.AddCourse(course)
	scheduler.AddSection(first)
	scheduler.AddSection(second)

	//** Act
	valid := scheduler.GenerateSchedule(newRand(7))

	//** Assert
	assert.False(t, valid)
	assert.False(t, scheduler.ValidateSchedule())
	assert.Zero(t, scheduler.EvaluateSchedule())
	assert.Len(t, scheduler.Schedule(), 1)

	report := scheduler.LastReport()
	assert.False(t, report.Valid)
	assert.Len(t, report.Assigned, 1)
	assert.Len(t, report.Unassigned, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, append(report.Assigned, report.Unassigned...))
}

func TestGenerateSchedulePreferredTeacher(t *testing.T) {
	//** Arrange
	scheduler := NewClassScheduler()
	teacher := NewTeacher("T1", "Dr. Smith")
	teacher.AddDefaultAvailability()
	course := NewCourse("C", "Compilers", 2)
	course.AssignTeacher(teacher)

	scheduler.AddTeacher(teacher)
	scheduler.AddCourse(course)
	scheduler.AddSection(NewSection("A", course))
	scheduler.AddPreference(NewTeacherPreference(PreferTeacher, "C", "T1", 1.0))

	//** Act
	valid := scheduler.GenerateSchedule(newRand(3))

	//** Assert
	require.True(t, valid)
	assert.Equal(t, 1.0, scheduler.EvaluateSchedule())

	outcomes := scheduler.Explain()
	require.Len(t, outcomes, 1)
	assert.Equal(t, "A", outcomes[0].SectionId)
	assert.True(t, outcomes[0].Satisfied)
}

func TestGenerateScheduleSharedTeacher(t *testing.T) {
	for seed := range uint64(20) {
		//** Arrange
		scheduler := NewClassScheduler()
		require.NoError(t, LoadDemoData(scheduler))

		//** Act
		valid := scheduler.GenerateSchedule(newRand(seed))

		//** Assert
		assert.True(t, valid)
		for _, section := range scheduler.Sections() {
			require.True(t, section.Scheduled(), section.Id)
			require.Len(t, section.TimeSlots, 1)
			assert.Equal(t, section.Course.CreditHours, section.TimeSlots[0].Duration)
			assert.Contains(t, section.Course.AssignedTeachers, section.Teacher)
		}
	}
}

func TestGenerateScheduleIsReproducible(t *testing.T) {
	run := func() []TimeSlot {
		scheduler := NewClassScheduler()
		require.NoError(t, LoadDemoData(scheduler))
		scheduler.GenerateSchedule(newRand(42))

		slots := make([]TimeSlot, 0)
		for _, section := range scheduler.Sections() {
			slots = append(slots, section.TimeSlots...)
		}
		return slots
	}

	assert.Equal(t, run(), run())
}

func TestGenerateScheduleResetsPreviousRun(t *testing.T) {
	scheduler := NewClassScheduler()
	require.NoError(t, LoadDemoData(scheduler))

	for seed := range uint64(5) {
		scheduler.GenerateSchedule(newRand(seed))
		for _, section := range scheduler.Sections() {
			assert.Len(t, section.TimeSlots, 1)
		}
	}
}

func TestGenerateScheduleWithoutRandomSource(t *testing.T) {
	scheduler := NewClassScheduler()
	require.NoError(t, LoadDemoData(scheduler))

	assert.True(t, scheduler.GenerateSchedule(nil))
}

func TestGenerateScheduleFilters(t *testing.T) {
	newScheduler := func(preferences ...Preference) (Scheduler, *Section) {
		scheduler := NewClassScheduler()
		first, second := NewTeacher("T1", "Dr. Smith"), NewTeacher("T2", "Prof. Johnson")
		for _, teacher := range []*Teacher{first, second} {
			teacher.AddAvailableTimeSlot(TimeSlot{Day: 0, Hour: 8, Duration: 1})
			teacher.AddAvailableTimeSlot(TimeSlot{Day: 0, Hour: 9, Duration: 1})
			scheduler.AddTeacher(teacher)
		}
		course := NewCourse("CS101", "Intro to Programming", 1)
		course.AssignTeacher(first)
		course.AssignTeacher(second)
		section := NewSection("A", course)

		scheduler.AddCourse(course)
		scheduler.AddSection(section)
		for _, preference := range preferences {
			scheduler.AddPreference(preference)
		}
		return scheduler, section
	}

	t.Run("Avoided teacher is never chosen", func(t *testing.T) {
		for seed := range uint64(20) {
			scheduler, section := newScheduler(NewTeacherPreference(AvoidTeacher, "CS101", "T1", 1))
			require.True(t, scheduler.GenerateSchedule(newRand(seed)))
			assert.Equal(t, "T2", section.Teacher.Id)
		}
	})

	t.Run("Preferred teacher overrides avoidance", func(t *testing.T) {
		teachers := make(map[string]bool)
		for seed := range uint64(40) {
			scheduler, section := newScheduler(
				NewTeacherPreference(AvoidTeacher, "CS101", "T1", 1),
				NewTeacherPreference(PreferTeacher, "CS101", "T1", 1),
			)
			require.True(t, scheduler.GenerateSchedule(newRand(seed)))
			teachers[section.Teacher.Id] = true
		}
		assert.True(t, teachers["T1"])
	})

	t.Run("Avoiding every teacher falls back to all of them", func(t *testing.T) {
		for seed := range uint64(20) {
			scheduler, section := newScheduler(
				NewTeacherPreference(AvoidTeacher, "CS101", "T1", 1),
				NewTeacherPreference(AvoidTeacher, "CS101", "T2", 1),
			)
			assert.True(t, scheduler.GenerateSchedule(newRand(seed)))
			assert.NotNil(t, section.Teacher)
			assert.Equal(t, 0.5, scheduler.EvaluateSchedule())
		}
	})

	t.Run("Avoided time slot is never chosen", func(t *testing.T) {
		for seed := range uint64(20) {
			scheduler, section := newScheduler(NewTimeSlotPreference(AvoidTimeSlot, "CS101", TimeSlot{Day: 0, Hour: 8, Duration: 1}, 1))
			require.True(t, scheduler.GenerateSchedule(newRand(seed)))
			assert.Equal(t, 9, section.TimeSlots[0].Hour)
			assert.Equal(t, 1.0, scheduler.EvaluateSchedule())
		}
	})

	t.Run("Preferences of other courses are inert", func(t *testing.T) {
		scheduler, _ := newScheduler(NewTeacherPreference(PreferTeacher, "MATH201", "T1", 1))
		require.True(t, scheduler.GenerateSchedule(newRand(1)))
		assert.Equal(t, 1.0, scheduler.EvaluateSchedule())
		assert.Empty(t, scheduler.Explain())
	})
}

func TestGenerateScheduleRejectsBlocksPastDayEnd(t *testing.T) {
	//** Arrange
	scheduler := NewClassScheduler()
	teacher := NewTeacher("T1", "Dr. Smith")
	teacher.AddAvailableTimeSlot(TimeSlot{Day: 0, Hour: 16, Duration: 1})
	teacher.AddAvailableTimeSlot(TimeSlot{Day: 0, Hour: 17, Duration: 1})
	course := NewCourse("MATH201", "Calculus II", 3)
	course.AssignTeacher(teacher)
	section := NewSection("A", course)

	scheduler.AddTeacher(teacher)
	scheduler.AddCourse(course)
	scheduler.AddSection(section)

	//** Act
	valid := scheduler.GenerateSchedule(newRand(1))

	//** Assert
	assert.False(t, valid)
	assert.False(t, section.Scheduled())
	assert.Empty(t, scheduler.Schedule())
}

func TestGenerateScheduleReport(t *testing.T) {
	//** Arrange
	recorder := &countingRecorder{}
	scheduler := NewClassScheduler(WithRecorder(recorder), WithArrangementCap(10))
	require.NoError(t, LoadDemoData(scheduler))

	//** Act
	valid := scheduler.GenerateSchedule(newRand(5))

	//** Assert
	report := scheduler.LastReport()
	assert.Equal(t, valid, report.Valid)
	assert.NotEmpty(t, report.RunId)
	assert.Equal(t, 10, report.Arrangements)
	assert.Equal(t, "CS101", report.ConstrainedCourse)
	assert.ElementsMatch(t, []string{"A", "B"}, report.Assigned)
	assert.Empty(t, report.Unassigned)

	require.Len(t, recorder.reports, 1)
	assert.Equal(t, report.RunId, recorder.reports[0].RunId)
	assert.Equal(t, scheduler.EvaluateSchedule(), recorder.scores[0])

	assert.Equal(t, len(WeekSlots()), scheduler.Tree().Len())
}

func TestGenerateScheduleWithoutMultiHourCourses(t *testing.T) {
	scheduler := NewClassScheduler()
	teacher := NewTeacher("T1", "Dr. Smith")
	teacher.AddDefaultAvailability()
	course := NewCourse("SEM100", "Seminar", 1)
	course.AssignTeacher(teacher)
	scheduler.AddCourse(course)
	scheduler.AddSection(NewSection("A", course))

	assert.True(t, scheduler.GenerateSchedule(newRand(1)))
	assert.Empty(t, scheduler.LastReport().ConstrainedCourse)
	assert.Equal(t, universe(), scheduler.Tree().Frontier())
}

func TestGenerateBest(t *testing.T) {
	t.Run("Keeps the best run", func(t *testing.T) {
		//** Arrange
		recorder := &countingRecorder{}
		scheduler := NewClassScheduler(WithRecorder(recorder))
		require.NoError(t, LoadDemoData(scheduler))
		scheduler.AddPreference(NewTeacherPreference(PreferTeacher, "CS101", "T2", 1))

		//** Act
		valid, score := scheduler.GenerateBest(newRand(11), 50)

		//** Assert
		assert.True(t, valid)
		assert.Equal(t, 1.0, score)
		assert.Equal(t, score, scheduler.EvaluateSchedule())
		assert.True(t, scheduler.LastReport().Valid)
		assert.LessOrEqual(t, len(recorder.reports), 50)

		for _, section := range scheduler.Sections() {
			if section.Course.Code == "CS101" {
				assert.Equal(t, "T2", section.Teacher.Id)
			}
		}
	})

	t.Run("Stops on the first fully satisfied run", func(t *testing.T) {
		recorder := &countingRecorder{}
		scheduler := NewClassScheduler(WithRecorder(recorder))
		require.NoError(t, LoadDemoData(scheduler))

		valid, score := scheduler.GenerateBest(newRand(1), 10)

		assert.True(t, valid)
		assert.Equal(t, 1.0, score)
		assert.Len(t, recorder.reports, 1)
	})

	t.Run("Non positive attempts run once", func(t *testing.T) {
		recorder := &countingRecorder{}
		scheduler := NewClassScheduler(WithRecorder(recorder))
		require.NoError(t, LoadDemoData(scheduler))

		scheduler.GenerateBest(newRand(1), 0)

		assert.Len(t, recorder.reports, 1)
	})

	t.Run("Invalid runs restore the most complete assignment", func(t *testing.T) {
		scheduler := NewClassScheduler()
		teacher := NewTeacher("T1", "Dr. Smith")
		teacher.AddAvailableTimeSlot(TimeSlot{Day: 0, Hour: 9, Duration: 1})
		course := NewCourse("CS101", "Intro to Programming", 1)
		course.AssignTeacher(teacher)
		scheduler.AddCourse(course)
		scheduler.AddSection(NewSection("A", course))
		scheduler.AddSection(NewSection("B", course))

		valid, score := scheduler.GenerateBest(newRand(1), 5)

		assert.False(t, valid)
		assert.Zero(t, score)
		assert.Len(t, scheduler.Schedule(), 1)
	})
}
