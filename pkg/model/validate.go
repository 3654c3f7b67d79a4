package model

import (
	"github.com/samber/lo"
)

// PreferenceOutcome tells whether a preference held for one section of its course
type PreferenceOutcome struct {
	SectionId  string
	CourseCode string
	Preference Preference
	Satisfied  bool
}

// ValidateSchedule checks that every section is scheduled and no teacher teaches two overlapping sections
func (scheduler *classScheduler) ValidateSchedule() bool {
	for _, section := range scheduler.sections {
		if !section.Scheduled() {
			return false
		}
	}

	for i, section := range scheduler.sections {
		for j, other := range scheduler.sections {
			if i == j || section.Teacher != other.Teacher {
				continue
			}
			for _, slot := range section.TimeSlots {
				if overlapsAny(slot, other.TimeSlots) {
					return false
				}
			}
		}
	}
	return true
}

// EvaluateSchedule returns the weighted share of satisfied preferences, 0 for an invalid schedule and 1 when no preference applies
func (scheduler *classScheduler) EvaluateSchedule() float64 {
	if !scheduler.ValidateSchedule() {
		return 0
	}

	var score, maxScore float64
	for _, outcome := range scheduler.outcomes() {
		maxScore += outcome.Preference.Weight
		if outcome.Satisfied {
			score += outcome.Preference.Weight
		}
	}

	if maxScore == 0 {
		return 1
	}
	return score / maxScore
}

// Explain lists, for every section, the outcome of each preference about its course
func (scheduler *classScheduler) Explain() []PreferenceOutcome {
	return scheduler.outcomes()
}

func (scheduler *classScheduler) outcomes() []PreferenceOutcome {
	outcomes := make([]PreferenceOutcome, 0)
	for _, section := range scheduler.sections {
		courseCode := section.courseCode()
		for _, preference := range scheduler.preferences {
			if preference.CourseCode != courseCode {
				continue
			}
			outcomes = append(outcomes, PreferenceOutcome{
				SectionId:  section.Id,
				CourseCode: courseCode,
				Preference: preference,
				Satisfied:  preference.Satisfied(section),
			})
		}
	}
	return outcomes
}

// containsStart checks whether any slot starts at the same day and hour as target
func containsStart(slots []TimeSlot, target TimeSlot) bool {
	return lo.SomeBy(slots, func(slot TimeSlot) bool { return slot.SameStart(target) })
}
