package model

import (
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// universe returns the identifiers of every one-hour slot of the working week
func universe() []string {
	return lo.Map(WeekSlots(), func(slot TimeSlot, _ int) string { return slot.ID() })
}

// window returns the identifiers of the consecutive one-hour slots starting at the given day and hour
func window(day, hour, length int) []string {
	ids := make([]string, 0, length)
	for offset := range length {
		ids = append(ids, SlotID(day, hour+offset))
	}
	return ids
}

// applyConstraints probes multi-hour courses' windows in course, day and hour order and stops at the first one the tree can
// reduce. It keeps the tree consistent with one known-feasible contiguous block; slot choice is left to the assignment.
func (scheduler *classScheduler) applyConstraints() (constrainedCourse string) {
	for _, course := range scheduler.courses {
		if course == nil || course.CreditHours <= 1 {
			continue
		}

		for day := FirstDay; day <= LastDay; day++ {
			for hour := FirstHour; hour <= DayEnd-course.CreditHours; hour++ {
				if scheduler.tree.Reduce(window(day, hour, course.CreditHours)) {
					scheduler.logger.Debug("contiguity constraint imposed",
						zap.String("course", course.Code),
						zap.Int("day", day),
						zap.Int("hour", hour),
					)
					return course.Code
				}
			}
		}
	}
	return ""
}
