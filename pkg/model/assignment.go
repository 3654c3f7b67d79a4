package model

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

func (scheduler *classScheduler) GenerateSchedule(rng *rand.Rand) bool {
	start := time.Now()
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	report := GenerationReport{RunId: uuid.NewString()}

	//** Reset previous assignment
	for _, section := range scheduler.sections {
		section.Clear()
	}

	//** Rebuild constraint tree
	scheduler.tree.Build(universe())
	report.ConstrainedCourse = scheduler.applyConstraints()

	arrangements := scheduler.tree.Arrangements(scheduler.arrangementCap)
	report.Arrangements = len(arrangements)
	if len(arrangements) == 0 {
		return scheduler.finish(report, start, false)
	}

	//** Assign sections in random order
	sections := slices.Clone(scheduler.sections)
	rng.Shuffle(len(sections), func(i, j int) { sections[i], sections[j] = sections[j], sections[i] })

	for _, section := range sections {
		if !scheduler.assign(section, rng) {
			scheduler.logger.Debug("section left unassigned",
				zap.String("run_id", report.RunId),
				zap.String("section", section.Id),
				zap.String("course", section.courseCode()),
			)
		}
	}

	return scheduler.finish(report, start, scheduler.ValidateSchedule())
}

// assign tries every candidate teacher and start slot in random order and keeps the first block that fits
func (scheduler *classScheduler) assign(section *Section, rng *rand.Rand) bool {
	if section.Course == nil {
		return false
	}

	teachers := scheduler.candidateTeachers(section.Course)
	rng.Shuffle(len(teachers), func(i, j int) { teachers[i], teachers[j] = teachers[j], teachers[i] })

	for _, teacher := range teachers {
		if teacher == nil {
			continue
		}
		occupied := scheduler.occupiedSlots(teacher)

		slots := scheduler.candidateSlots(section.Course, teacher, occupied)
		rng.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

		for _, slot := range slots {
			block, ok := extend(slot, section.Course.CreditHours, occupied)
			if !ok {
				continue
			}
			section.AssignTeacher(teacher)
			section.AddTimeSlot(block)
			return true
		}
	}
	return false
}

// candidateTeachers drops teachers avoided for the course unless they are also preferred, falling back to every assigned teacher
func (scheduler *classScheduler) candidateTeachers(course *Course) []*Teacher {
	suitable := lo.Filter(course.AssignedTeachers, func(teacher *Teacher, _ int) bool {
		if teacher == nil {
			return false
		}
		preferred := scheduler.hasTeacherPreference(PreferTeacher, course.Code, teacher.Id)
		avoided := scheduler.hasTeacherPreference(AvoidTeacher, course.Code, teacher.Id)
		return !avoided || preferred
	})

	if len(suitable) == 0 {
		return slices.Clone(course.AssignedTeachers)
	}
	return suitable
}

// candidateSlots drops slots avoided for the course unless they are also preferred, and slots colliding with the teacher's assignments
func (scheduler *classScheduler) candidateSlots(course *Course, teacher *Teacher, occupied []TimeSlot) []TimeSlot {
	return lo.Filter(teacher.AvailableSlots, func(slot TimeSlot, _ int) bool {
		preferred := scheduler.hasTimeSlotPreference(PreferTimeSlot, course.Code, slot)
		avoided := scheduler.hasTimeSlotPreference(AvoidTimeSlot, course.Code, slot)
		if avoided && !preferred {
			return false
		}
		return !overlapsAny(slot, occupied)
	})
}

// extend grows the slot one hour at a time up to the course's credit hours
func extend(slot TimeSlot, creditHours int, occupied []TimeSlot) (TimeSlot, bool) {
	block := slot
	for i := 1; i < creditHours; i++ {
		block.Duration++
		if block.End() > DayEnd || overlapsAny(block, occupied) {
			return TimeSlot{}, false
		}
	}
	return block, true
}

// occupiedSlots returns every slot currently assigned to the teacher across all sections
func (scheduler *classScheduler) occupiedSlots(teacher *Teacher) []TimeSlot {
	occupied := make([]TimeSlot, 0)
	for _, section := range scheduler.sections {
		if section.Teacher == teacher {
			occupied = append(occupied, section.TimeSlots...)
		}
	}
	return occupied
}

func (scheduler *classScheduler) hasTeacherPreference(kind PreferenceKind, courseCode, teacherId string) bool {
	return lo.ContainsBy(scheduler.preferences, func(preference Preference) bool {
		return preference.Kind == kind && preference.CourseCode == courseCode && preference.TeacherId == teacherId
	})
}

func (scheduler *classScheduler) hasTimeSlotPreference(kind PreferenceKind, courseCode string, slot TimeSlot) bool {
	return lo.ContainsBy(scheduler.preferences, func(preference Preference) bool {
		return preference.Kind == kind && preference.CourseCode == courseCode && preference.TimeSlot.SameStart(slot)
	})
}

func overlapsAny(slot TimeSlot, others []TimeSlot) bool {
	return lo.SomeBy(others, func(other TimeSlot) bool { return slot.Overlaps(other) })
}

func (scheduler *classScheduler) finish(report GenerationReport, start time.Time, valid bool) bool {
	report.Valid = valid
	report.Duration = time.Since(start)
	for _, section := range scheduler.sections {
		if section.Scheduled() {
			report.Assigned = append(report.Assigned, section.Id)
		} else {
			report.Unassigned = append(report.Unassigned, section.Id)
		}
	}
	scheduler.report = report

	score := scheduler.EvaluateSchedule()
	if scheduler.recorder != nil {
		scheduler.recorder.ObserveGeneration(report, score)
	}

	scheduler.logger.Info("schedule generated",
		zap.String("run_id", report.RunId),
		zap.Bool("valid", valid),
		zap.Int("assigned", len(report.Assigned)),
		zap.Int("unassigned", len(report.Unassigned)),
		zap.Int("arrangements", report.Arrangements),
		zap.Float64("score", score),
		zap.Duration("duration", report.Duration),
	)
	return valid
}

// GenerateBest ranks valid runs above invalid ones, then by score, then by number of assigned sections.
// It stops early once a valid run fully satisfies every preference and leaves the best run's assignment in place.
func (scheduler *classScheduler) GenerateBest(rng *rand.Rand, attempts int) (bool, float64) {
	attempts = max(attempts, 1)

	var best *snapshot
	for attempt := range attempts {
		valid := scheduler.GenerateSchedule(rng)
		current := scheduler.capture(valid)

		if best == nil || current.betterThan(best) {
			best = current
		}
		if valid && current.score >= 1 {
			scheduler.logger.Debug("stopping early on a fully satisfied schedule", zap.Int("attempt", attempt+1))
			break
		}
	}

	scheduler.restore(best)
	return best.valid, best.score
}

type snapshot struct {
	valid    bool
	score    float64
	assigned int
	report   GenerationReport
	teachers []*Teacher
	slots    [][]TimeSlot
}

func (scheduler *classScheduler) capture(valid bool) *snapshot {
	state := &snapshot{
		valid:    valid,
		score:    scheduler.EvaluateSchedule(),
		report:   scheduler.report,
		teachers: make([]*Teacher, len(scheduler.sections)),
		slots:    make([][]TimeSlot, len(scheduler.sections)),
	}
	for i, section := range scheduler.sections {
		state.teachers[i] = section.Teacher
		state.slots[i] = slices.Clone(section.TimeSlots)
		if section.Scheduled() {
			state.assigned++
		}
	}
	return state
}

func (scheduler *classScheduler) restore(state *snapshot) {
	for i, section := range scheduler.sections {
		section.Teacher = state.teachers[i]
		section.TimeSlots = slices.Clone(state.slots[i])
	}
	scheduler.report = state.report
}

func (state *snapshot) betterThan(other *snapshot) bool {
	if state.valid != other.valid {
		return state.valid
	}
	if state.score != other.score {
		return state.score > other.score
	}
	return state.assigned > other.assigned
}
