package model

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/limaJavier/sectionscheduler/pkg/pqtree"

	"go.uber.org/zap"
)

// Scheduler assigns teachers and contiguous time slots to course sections and scores the result against preferences.
// Implementations are not safe for concurrent use.
type Scheduler interface {
	AddCourse(course *Course)
	AddTeacher(teacher *Teacher)
	AddSection(section *Section)
	AddPreference(preference Preference)

	Courses() []*Course
	Teachers() []*Teacher
	Sections() []*Section
	Preferences() []Preference

	// Rebuilds every section's assignment. A nil rng uses a non-deterministically seeded source.
	GenerateSchedule(rng *rand.Rand) bool
	// Re-invokes GenerateSchedule up to attempts times and keeps the best assignment
	GenerateBest(rng *rand.Rand, attempts int) (valid bool, score float64)

	ValidateSchedule() bool
	EvaluateSchedule() float64
	Explain() []PreferenceOutcome

	// Returns only the sections that have both a teacher and at least one time slot
	Schedule() []*Section
	LastReport() GenerationReport
	Tree() *pqtree.Tree
}

// Recorder observes the outcome of every generation run
type Recorder interface {
	ObserveGeneration(report GenerationReport, score float64)
}

// GenerationReport summarises a single generation run
type GenerationReport struct {
	RunId             string
	Valid             bool
	Assigned          []string // Section ids
	Unassigned        []string // Section ids
	Arrangements      int
	ConstrainedCourse string // Course whose window was imposed on the tree, empty if none
	Duration          time.Duration
}

type Option func(scheduler *classScheduler)

func WithLogger(logger *zap.Logger) Option {
	return func(scheduler *classScheduler) {
		if logger != nil {
			scheduler.logger = logger
		}
	}
}

func WithArrangementCap(arrangementCap int) Option {
	return func(scheduler *classScheduler) {
		if arrangementCap > 0 {
			scheduler.arrangementCap = arrangementCap
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(scheduler *classScheduler) {
		scheduler.recorder = recorder
	}
}

type classScheduler struct {
	courses     []*Course
	teachers    []*Teacher
	sections    []*Section
	preferences []Preference

	tree           *pqtree.Tree
	arrangementCap int
	report         GenerationReport

	logger   *zap.Logger
	recorder Recorder
}

func NewClassScheduler(options ...Option) Scheduler {
	scheduler := &classScheduler{
		tree:           pqtree.New(),
		arrangementCap: pqtree.DefaultArrangementCap,
		logger:         zap.NewNop(),
	}
	for _, option := range options {
		option(scheduler)
	}
	return scheduler
}

func (scheduler *classScheduler) AddCourse(course *Course) {
	scheduler.courses = append(scheduler.courses, course)
}

func (scheduler *classScheduler) AddTeacher(teacher *Teacher) {
	scheduler.teachers = append(scheduler.teachers, teacher)
}

func (scheduler *classScheduler) AddSection(section *Section) {
	scheduler.sections = append(scheduler.sections, section)
}

func (scheduler *classScheduler) AddPreference(preference Preference) {
	scheduler.preferences = append(scheduler.preferences, preference)
}

func (scheduler *classScheduler) Courses() []*Course {
	return slices.Clone(scheduler.courses)
}

func (scheduler *classScheduler) Teachers() []*Teacher {
	return slices.Clone(scheduler.teachers)
}

func (scheduler *classScheduler) Sections() []*Section {
	return slices.Clone(scheduler.sections)
}

func (scheduler *classScheduler) Preferences() []Preference {
	return slices.Clone(scheduler.preferences)
}

func (scheduler *classScheduler) Schedule() []*Section {
	scheduled := make([]*Section, 0, len(scheduler.sections))
	for _, section := range scheduler.sections {
		if section.Scheduled() {
			scheduled = append(scheduled, section)
		}
	}
	return scheduled
}

func (scheduler *classScheduler) LastReport() GenerationReport {
	return scheduler.report
}

func (scheduler *classScheduler) Tree() *pqtree.Tree {
	return scheduler.tree
}
