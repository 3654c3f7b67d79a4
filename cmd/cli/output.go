package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/limaJavier/sectionscheduler/pkg/model"
)

type sectionOutput struct {
	Section  string `json:"section"`
	Course   string `json:"course"`
	Teacher  string `json:"teacher"`
	Day      int    `json:"day"`
	Hour     int    `json:"hour"`
	Duration int    `json:"duration"`
	Label    string `json:"label"`
}

type preferenceOutput struct {
	Section    string  `json:"section"`
	Preference string  `json:"preference"`
	Weight     float64 `json:"weight"`
	Satisfied  bool    `json:"satisfied"`
}

type scheduleOutput struct {
	RunId       string             `json:"run_id"`
	Valid       bool               `json:"valid"`
	Score       float64            `json:"score"`
	Sections    []sectionOutput    `json:"sections"`
	Unassigned  []string           `json:"unassigned"`
	Preferences []preferenceOutput `json:"preferences"`
}

type treeOutput struct {
	ConstrainedCourse string     `json:"constrained_course"`
	Leaves            int        `json:"leaves"`
	Tree              string     `json:"tree"`
	Arrangements      int        `json:"arrangements"`
	Samples           [][]string `json:"samples"`
}

func buildOutput(scheduler model.Scheduler, valid bool, score float64) scheduleOutput {
	report := scheduler.LastReport()
	output := scheduleOutput{
		RunId:      report.RunId,
		Valid:      valid,
		Score:      score,
		Sections:   make([]sectionOutput, 0),
		Unassigned: lo.Ternary(report.Unassigned == nil, []string{}, report.Unassigned),
		Preferences: lo.Map(scheduler.Explain(), func(outcome model.PreferenceOutcome, _ int) preferenceOutput {
			return preferenceOutput{
				Section:    outcome.SectionId,
				Preference: outcome.Preference.String(),
				Weight:     outcome.Preference.Weight,
				Satisfied:  outcome.Satisfied,
			}
		}),
	}

	for _, section := range scheduler.Schedule() {
		for _, slot := range section.TimeSlots {
			output.Sections = append(output.Sections, sectionOutput{
				Section:  section.Id,
				Course:   section.Course.Code,
				Teacher:  section.Teacher.Id,
				Day:      slot.Day,
				Hour:     slot.Hour,
				Duration: slot.Duration,
				Label:    fmt.Sprintf("%v (%v) %v, %v", section.Course.Code, section.Id, section.Teacher.Name, slot),
			})
		}
	}

	slices.SortFunc(output.Sections, func(a, b sectionOutput) int {
		if a.Day != b.Day {
			return a.Day - b.Day
		}
		if a.Hour != b.Hour {
			return a.Hour - b.Hour
		}
		return strings.Compare(a.Section, b.Section)
	})
	return output
}

func buildTreeOutput(scheduler model.Scheduler, arrangementCap, show int) treeOutput {
	tree := scheduler.Tree()
	arrangements := tree.Arrangements(arrangementCap)

	return treeOutput{
		ConstrainedCourse: scheduler.LastReport().ConstrainedCourse,
		Leaves:            tree.Len(),
		Tree:              tree.String(),
		Arrangements:      len(arrangements),
		Samples:           lo.Subset(arrangements, 0, uint(max(show, 0))),
	}
}

func marshalOutput(output any) ([]byte, error) {
	return json.MarshalIndent(output, "", "  ")
}

// writeOutput writes to outFile, or to stdout when outFile is empty
func writeOutput(stdout io.Writer, outFile string, output []byte) error {
	if outFile == "" {
		_, err := fmt.Fprintln(stdout, string(output))
		return err
	}
	if err := os.WriteFile(outFile, output, 0666); err != nil {
		return fmt.Errorf("an error occurred while writing to the output file: %w", err)
	}
	return nil
}
