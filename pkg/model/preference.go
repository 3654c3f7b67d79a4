package model

import (
	"fmt"
	"strings"
)

type PreferenceKind int

const (
	PreferTeacher PreferenceKind = iota
	PreferTimeSlot
	AvoidTeacher
	AvoidTimeSlot
)

var preferenceKindNames = map[PreferenceKind]string{
	PreferTeacher:  "prefer_teacher",
	PreferTimeSlot: "prefer_time_slot",
	AvoidTeacher:   "avoid_teacher",
	AvoidTimeSlot:  "avoid_time_slot",
}

func (kind PreferenceKind) String() string {
	if name, ok := preferenceKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

func ParsePreferenceKind(raw string) (PreferenceKind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for kind, name := range preferenceKindNames {
		if name == normalized {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown preference kind \"%v\"", raw)
}

// Preference is a weighted student wish about a course. TeacherId is only read by teacher kinds and TimeSlot by time-slot kinds.
type Preference struct {
	Kind       PreferenceKind
	CourseCode string
	TeacherId  string
	TimeSlot   TimeSlot
	Weight     float64 // Between 0 and 1
}

func NewTeacherPreference(kind PreferenceKind, courseCode, teacherId string, weight float64) Preference {
	return Preference{Kind: kind, CourseCode: courseCode, TeacherId: teacherId, Weight: weight}
}

func NewTimeSlotPreference(kind PreferenceKind, courseCode string, slot TimeSlot, weight float64) Preference {
	return Preference{Kind: kind, CourseCode: courseCode, TimeSlot: slot, Weight: weight}
}

func (preference Preference) concernsTeacher() bool {
	return preference.Kind == PreferTeacher || preference.Kind == AvoidTeacher
}

// Satisfied checks whether the section's current assignment honours the preference
func (preference Preference) Satisfied(section *Section) bool {
	switch preference.Kind {
	case PreferTeacher:
		return section.Teacher != nil && section.Teacher.Id == preference.TeacherId
	case AvoidTeacher:
		return section.Teacher == nil || section.Teacher.Id != preference.TeacherId
	case PreferTimeSlot:
		return containsStart(section.TimeSlots, preference.TimeSlot)
	case AvoidTimeSlot:
		return !containsStart(section.TimeSlots, preference.TimeSlot)
	default:
		return false
	}
}

func (preference Preference) String() string {
	if preference.concernsTeacher() {
		return fmt.Sprintf("%v %v %v (%.2f)", preference.Kind, preference.CourseCode, preference.TeacherId, preference.Weight)
	}
	return fmt.Sprintf("%v %v %v (%.2f)", preference.Kind, preference.CourseCode, preference.TimeSlot, preference.Weight)
}
