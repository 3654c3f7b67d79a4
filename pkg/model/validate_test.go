package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// placedScheduler registers sections whose assignment is set by hand
func placedScheduler(sections ...*Section) Scheduler {
	scheduler := NewClassScheduler()
	for _, section := range sections {
		scheduler.AddSection(section)
	}
	return scheduler
}

func placed(id string, course *Course, teacher *Teacher, slots ...TimeSlot) *Section {
	section := NewSection(id, course)
	section.AssignTeacher(teacher)
	for _, slot := range slots {
		section.AddTimeSlot(slot)
	}
	return section
}

func TestValidateSchedule(t *testing.T) {
	course := NewCourse("CS101", "Intro to Programming", 2)
	smith, johnson := NewTeacher("T1", "Dr. Smith"), NewTeacher("T2", "Prof. Johnson")

	t.Run("No sections", func(t *testing.T) {
		assert.True(t, placedScheduler().ValidateSchedule())
	})

	t.Run("Unassigned section", func(t *testing.T) {
		assert.False(t, placedScheduler(NewSection("A", course)).ValidateSchedule())
		assert.False(t, placedScheduler(placed("A", course, smith)).ValidateSchedule())
		assert.False(t, placedScheduler(placed("A", course, nil, TimeSlot{0, 8, 2})).ValidateSchedule())
	})

	t.Run("Shared teacher with overlapping slots", func(t *testing.T) {
		scheduler := placedScheduler(
			placed("A", course, smith, TimeSlot{0, 8, 2}),
			placed("B", course, smith, TimeSlot{0, 9, 2}),
		)
		assert.False(t, scheduler.ValidateSchedule())
		assert.Zero(t, scheduler.EvaluateSchedule())
	})

	t.Run("Shared teacher on disjoint slots", func(t *testing.T) {
		scheduler := placedScheduler(
			placed("A", course, smith, TimeSlot{0, 8, 2}),
			placed("B", course, smith, TimeSlot{0, 10, 2}),
			placed("C", course, smith, TimeSlot{1, 8, 2}),
		)
		assert.True(t, scheduler.ValidateSchedule())
	})

	t.Run("Different teachers may overlap", func(t *testing.T) {
		scheduler := placedScheduler(
			placed("A", course, smith, TimeSlot{0, 8, 2}),
			placed("B", course, johnson, TimeSlot{0, 8, 2}),
		)
		assert.True(t, scheduler.ValidateSchedule())
	})

	t.Run("Overlap with a later slot of the other section", func(t *testing.T) {
		scheduler := placedScheduler(
			placed("A", course, smith, TimeSlot{2, 14, 1}),
			placed("B", course, smith, TimeSlot{0, 8, 1}, TimeSlot{2, 13, 2}),
		)
		assert.False(t, scheduler.ValidateSchedule())
	})
}

func TestEvaluateSchedule(t *testing.T) {
	course := NewCourse("CS101", "Intro to Programming", 2)
	other := NewCourse("MATH201", "Calculus II", 4)
	smith, johnson := NewTeacher("T1", "Dr. Smith"), NewTeacher("T2", "Prof. Johnson")

	t.Run("No applicable preferences", func(t *testing.T) {
		scheduler := placedScheduler(placed("A", course, smith, TimeSlot{0, 8, 2}))
		scheduler.AddPreference(NewTeacherPreference(PreferTeacher, "MATH201", "T1", 1))

		assert.Equal(t, 1.0, scheduler.EvaluateSchedule())
	})

	t.Run("Weighted share of satisfied preferences", func(t *testing.T) {
		//** Arrange
		scheduler := placedScheduler(
			placed("A", course, smith, TimeSlot{0, 8, 2}),
			placed("B", other, johnson, TimeSlot{1, 10, 4}),
		)
		scheduler.AddPreference(NewTeacherPreference(PreferTeacher, "CS101", "T1", 0.6))                   // Satisfied
		scheduler.AddPreference(NewTimeSlotPreference(AvoidTimeSlot, "CS101", TimeSlot{0, 8, 1}, 0.2))     // Violated
		scheduler.AddPreference(NewTimeSlotPreference(PreferTimeSlot, "MATH201", TimeSlot{1, 10, 1}, 0.4)) // Satisfied
		scheduler.AddPreference(NewTeacherPreference(AvoidTeacher, "MATH201", "T2", 0.8))                  // Violated
		scheduler.AddPreference(NewTeacherPreference(PreferTeacher, "PHYS110", "T2", 1))                   // Inert

		//** Act
		score := scheduler.EvaluateSchedule()
		outcomes := scheduler.Explain()

		//** Assert
		assert.InDelta(t, 1.0/2.0, score, 1e-9)
		assert.Len(t, outcomes, 4)
		assert.Equal(t, []bool{true, false, true, false}, []bool{
			outcomes[0].Satisfied, outcomes[1].Satisfied, outcomes[2].Satisfied, outcomes[3].Satisfied,
		})
		assert.Equal(t, "B", outcomes[2].SectionId)
	})

	t.Run("Preferences count once per section of their course", func(t *testing.T) {
		scheduler := placedScheduler(
			placed("A", course, smith, TimeSlot{0, 8, 2}),
			placed("B", course, johnson, TimeSlot{0, 8, 2}),
		)
		scheduler.AddPreference(NewTeacherPreference(PreferTeacher, "CS101", "T1", 1))

		assert.Equal(t, 0.5, scheduler.EvaluateSchedule())
		assert.Len(t, scheduler.Explain(), 2)
	})

	t.Run("Zero weights", func(t *testing.T) {
		scheduler := placedScheduler(placed("A", course, smith, TimeSlot{0, 8, 2}))
		scheduler.AddPreference(NewTeacherPreference(AvoidTeacher, "CS101", "T1", 0))

		assert.Equal(t, 1.0, scheduler.EvaluateSchedule())
	})
}
