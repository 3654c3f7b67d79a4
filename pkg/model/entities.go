package model

import (
	"slices"
)

type Teacher struct {
	Id             string
	Name           string
	AvailableSlots []TimeSlot
}

type Course struct {
	Code             string
	Title            string
	CreditHours      int
	AssignedTeachers []*Teacher // Shared with sections and other courses, never owned
}

// Section is a schedulable instance of a course. Teacher and TimeSlots are rewritten by every generation run.
type Section struct {
	Id        string
	Course    *Course
	Teacher   *Teacher
	TimeSlots []TimeSlot
}

func NewTeacher(id, name string) *Teacher {
	return &Teacher{Id: id, Name: name}
}

func (teacher *Teacher) AddAvailableTimeSlot(slot TimeSlot) {
	teacher.AvailableSlots = append(teacher.AvailableSlots, slot)
}

// AddDefaultAvailability makes the teacher available for every one-hour slot of the working week
func (teacher *Teacher) AddDefaultAvailability() {
	teacher.AvailableSlots = append(teacher.AvailableSlots, WeekSlots()...)
}

func NewCourse(code, title string, creditHours int) *Course {
	return &Course{Code: code, Title: title, CreditHours: creditHours}
}

// AssignTeacher adds the teacher to the course unless it is already assigned
func (course *Course) AssignTeacher(teacher *Teacher) {
	if teacher == nil || slices.Contains(course.AssignedTeachers, teacher) {
		return
	}
	course.AssignedTeachers = append(course.AssignedTeachers, teacher)
}

func NewSection(id string, course *Course) *Section {
	return &Section{Id: id, Course: course}
}

func (section *Section) AssignTeacher(teacher *Teacher) {
	section.Teacher = teacher
}

func (section *Section) AddTimeSlot(slot TimeSlot) {
	section.TimeSlots = append(section.TimeSlots, slot)
}

func (section *Section) Clear() {
	section.Teacher = nil
	section.TimeSlots = nil
}

// Scheduled checks whether the section has both a teacher and at least one time slot
func (section *Section) Scheduled() bool {
	return section.Teacher != nil && len(section.TimeSlots) > 0
}

func (section *Section) courseCode() string {
	if section.Course == nil {
		return ""
	}
	return section.Course.Code
}
