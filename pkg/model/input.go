package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCourse  = errors.New("unknown course")
	ErrUnknownTeacher = errors.New("unknown teacher")
)

type RawTeacher struct {
	Id                  string     `mapstructure:"id" validate:"required"`
	Name                string     `mapstructure:"name"`
	DefaultAvailability bool       `mapstructure:"default_availability"`
	Availability        []TimeSlot `mapstructure:"availability" validate:"dive"`
}

type RawCourse struct {
	Code        string   `mapstructure:"code" validate:"required"`
	Title       string   `mapstructure:"title"`
	CreditHours int      `mapstructure:"credit_hours" validate:"min=1,max=10"`
	Teachers    []string `mapstructure:"teachers"` // Teacher ids
}

type RawSection struct {
	Id      string `mapstructure:"id" validate:"required"`
	Course  string `mapstructure:"course" validate:"required"`
	Teacher string `mapstructure:"teacher"` // Optional, added to the course's teachers
}

type RawPreference struct {
	Kind     string    `mapstructure:"kind" validate:"required,preference_kind"`
	Course   string    `mapstructure:"course" validate:"required"`
	Teacher  string    `mapstructure:"teacher"`
	TimeSlot *TimeSlot `mapstructure:"time_slot" validate:"omitempty"`
	Weight   float64   `mapstructure:"weight" validate:"min=0,max=1"`
}

// RawInput is the document format accepted by InputFromFile
type RawInput struct {
	Teachers    []RawTeacher    `mapstructure:"teachers" validate:"dive"`
	Courses     []RawCourse     `mapstructure:"courses" validate:"dive"`
	Sections    []RawSection    `mapstructure:"sections" validate:"dive"`
	Preferences []RawPreference `mapstructure:"preferences" validate:"dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	instance := validator.New()
	instance.RegisterValidation("preference_kind", func(fl validator.FieldLevel) bool {
		_, err := ParsePreferenceKind(fl.Field().String())
		return err == nil
	})
	return instance
}

// InputFromFile reads a JSON or YAML document, chosen by the file extension
func InputFromFile(file string) (RawInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return RawInput{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var document map[string]any
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &document)
	case ".json":
		err = json.Unmarshal(bytes, &document)
	default:
		return RawInput{}, fmt.Errorf("unsupported input format \"%v\"", filepath.Ext(file))
	}
	if err != nil {
		return RawInput{}, fmt.Errorf("cannot parse input file: %w", err)
	}

	return InputFromMap(document)
}

// InputFromMap decodes and validates an already parsed document
func InputFromMap(document map[string]any) (RawInput, error) {
	var rawInput RawInput
	if err := mapstructure.Decode(document, &rawInput); err != nil {
		return RawInput{}, fmt.Errorf("cannot decode input: %w", err)
	}
	rawInput.defaultDurations()
	if err := rawInput.Validate(); err != nil {
		return RawInput{}, err
	}
	return rawInput, nil
}

// defaultDurations treats a slot without duration as a one-hour slot
func (rawInput *RawInput) defaultDurations() {
	for i := range rawInput.Teachers {
		for j := range rawInput.Teachers[i].Availability {
			if rawInput.Teachers[i].Availability[j].Duration == 0 {
				rawInput.Teachers[i].Availability[j].Duration = 1
			}
		}
	}
	for _, preference := range rawInput.Preferences {
		if preference.TimeSlot != nil && preference.TimeSlot.Duration == 0 {
			preference.TimeSlot.Duration = 1
		}
	}
}

func (rawInput RawInput) Validate() error {
	if err := validate.Struct(rawInput); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// Populate registers teachers, courses, sections and preferences in that order. References must resolve to entities of
// the same document.
func (rawInput RawInput) Populate(scheduler Scheduler) error {
	//** Teachers
	teachers := make(map[string]*Teacher, len(rawInput.Teachers))
	for _, rawTeacher := range rawInput.Teachers {
		if _, ok := teachers[rawTeacher.Id]; ok {
			return fmt.Errorf("duplicate teacher \"%v\"", rawTeacher.Id)
		}
		teacher := NewTeacher(rawTeacher.Id, rawTeacher.Name)
		if rawTeacher.DefaultAvailability {
			teacher.AddDefaultAvailability()
		}
		for _, slot := range rawTeacher.Availability {
			teacher.AddAvailableTimeSlot(slot)
		}
		teachers[teacher.Id] = teacher
		scheduler.AddTeacher(teacher)
	}

	//** Courses
	courses := make(map[string]*Course, len(rawInput.Courses))
	for _, rawCourse := range rawInput.Courses {
		if _, ok := courses[rawCourse.Code]; ok {
			return fmt.Errorf("duplicate course \"%v\"", rawCourse.Code)
		}
		course := NewCourse(rawCourse.Code, rawCourse.Title, rawCourse.CreditHours)
		for _, teacherId := range rawCourse.Teachers {
			teacher, ok := teachers[teacherId]
			if !ok {
				return fmt.Errorf("course \"%v\": %w \"%v\"", course.Code, ErrUnknownTeacher, teacherId)
			}
			course.AssignTeacher(teacher)
		}
		courses[course.Code] = course
		scheduler.AddCourse(course)
	}

	//** Sections
	sectionIds := make(map[string]bool, len(rawInput.Sections))
	for _, rawSection := range rawInput.Sections {
		if sectionIds[rawSection.Id] {
			return fmt.Errorf("duplicate section \"%v\"", rawSection.Id)
		}
		sectionIds[rawSection.Id] = true

		course, ok := courses[rawSection.Course]
		if !ok {
			return fmt.Errorf("section \"%v\": %w \"%v\"", rawSection.Id, ErrUnknownCourse, rawSection.Course)
		}
		if rawSection.Teacher != "" {
			teacher, ok := teachers[rawSection.Teacher]
			if !ok {
				return fmt.Errorf("section \"%v\": %w \"%v\"", rawSection.Id, ErrUnknownTeacher, rawSection.Teacher)
			}
			course.AssignTeacher(teacher)
		}
		scheduler.AddSection(NewSection(rawSection.Id, course))
	}

	//** Preferences
	for i, rawPreference := range rawInput.Preferences {
		preference, err := rawPreference.toPreference(courses, teachers)
		if err != nil {
			return fmt.Errorf("preference %d: %w", i, err)
		}
		scheduler.AddPreference(preference)
	}

	return nil
}

func (rawPreference RawPreference) toPreference(courses map[string]*Course, teachers map[string]*Teacher) (Preference, error) {
	kind, err := ParsePreferenceKind(rawPreference.Kind)
	if err != nil {
		return Preference{}, err
	}
	if _, ok := courses[rawPreference.Course]; !ok {
		return Preference{}, fmt.Errorf("%w \"%v\"", ErrUnknownCourse, rawPreference.Course)
	}

	preference := Preference{Kind: kind, CourseCode: rawPreference.Course, Weight: rawPreference.Weight}
	if preference.concernsTeacher() {
		if _, ok := teachers[rawPreference.Teacher]; !ok {
			return Preference{}, fmt.Errorf("%w \"%v\"", ErrUnknownTeacher, rawPreference.Teacher)
		}
		preference.TeacherId = rawPreference.Teacher
		return preference, nil
	}

	if rawPreference.TimeSlot == nil {
		return Preference{}, fmt.Errorf("%v requires a time slot", kind)
	}
	preference.TimeSlot = *rawPreference.TimeSlot
	return preference, nil
}

// CourseCodes lists the codes of the document's courses in declaration order
func (rawInput RawInput) CourseCodes() []string {
	return lo.Map(rawInput.Courses, func(course RawCourse, _ int) string { return course.Code })
}
