package main

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/limaJavier/sectionscheduler/pkg/config"
	"github.com/limaJavier/sectionscheduler/pkg/logger"
	"github.com/limaJavier/sectionscheduler/pkg/metrics"
	"github.com/limaJavier/sectionscheduler/pkg/model"
)

const (
	exitValid   = 0
	exitFailure = 1
	exitInvalid = 2 // Schedule generated but not every section could be placed
)

var errInvalidSchedule = errors.New("schedule is not valid")

// app carries what every command needs once flags are parsed
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	recorder   *metrics.Recorder
}

func main() {
	root, application := newRootCommand()
	err := root.Execute()
	application.teardown()

	switch {
	case err == nil:
		os.Exit(exitValid)
	case errors.Is(err, errInvalidSchedule):
		os.Exit(exitInvalid)
	default:
		log.Printf("%v", err)
		os.Exit(exitFailure)
	}
}

func newRootCommand() (*cobra.Command, *app) {
	application := &app{}

	root := &cobra.Command{
		Use:           "scheduler",
		Short:         "Assigns teachers and weekly time slots to course sections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return application.setup()
		},
	}
	root.PersistentFlags().StringVar(&application.configPath, "config", "", "Path to a configuration file (yaml, json or toml); environment variables take precedence")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates a schedule for an input file and prints it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			out, _ := cmd.Flags().GetString("out")

			rawInput, err := model.InputFromFile(file)
			if err != nil {
				return err
			}
			return application.generate(cmd, rawInput, out)
		},
	}
	generateCmd.Flags().String("file", "", "Path to the input file (json or yaml)")
	generateCmd.Flags().String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	addRunFlags(generateCmd)
	generateCmd.MarkFlagRequired("file")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Generates a schedule for the built-in demo catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return application.generate(cmd, model.DemoInput(), out)
		},
	}
	demoCmd.Flags().String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	addRunFlags(demoCmd)

	arrangementsCmd := &cobra.Command{
		Use:   "arrangements",
		Short: "Shows the slot constraint tree built for an input file and its candidate arrangements",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			show, _ := cmd.Flags().GetInt("show")
			if cmd.Flags().Changed("cap") {
				application.cfg.Scheduler.ArrangementCap, _ = cmd.Flags().GetInt("cap")
			}
			if err := application.cfg.Validate(); err != nil {
				return err
			}

			rawInput, err := model.InputFromFile(file)
			if err != nil {
				return err
			}
			return application.arrangements(cmd, rawInput, show)
		},
	}
	arrangementsCmd.Flags().String("file", "", "Path to the input file (json or yaml)")
	arrangementsCmd.Flags().Int("cap", 0, "Maximum number of arrangements to enumerate; overrides SCHEDULER_ARRANGEMENT_CAP")
	arrangementsCmd.Flags().Int("show", 3, "Number of arrangements to print")
	arrangementsCmd.MarkFlagRequired("file")

	root.AddCommand(generateCmd, demoCmd, arrangementsCmd)
	return root, application
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("seed", 0, "Random seed; 0 draws a fresh one every run. Overrides SCHEDULER_SEED")
	cmd.Flags().Int("attempts", 0, "Generation attempts, the best schedule is kept. Overrides SCHEDULER_ATTEMPTS")
}

func (application *app) setup() error {
	cfg, err := config.Load(application.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("cannot build logger: %w", err)
	}

	application.cfg = cfg
	application.logger = zapLogger
	if cfg.Metrics.Enabled {
		application.recorder = metrics.NewRecorder()
	}
	return nil
}

func (application *app) teardown() {
	if application.logger == nil {
		return
	}
	if application.recorder != nil {
		snapshot := application.recorder.Snapshot()
		application.logger.Info("generation metrics",
			zap.Uint64("runs", snapshot.Runs),
			zap.Float64("success_ratio", snapshot.SuccessRatio),
			zap.Float64("average_score", snapshot.AverageScore),
			zap.Float64("average_duration_ms", snapshot.AverageDurationMs),
		)
	}
	_ = application.logger.Sync()
}

func (application *app) newScheduler() model.Scheduler {
	options := []model.Option{
		model.WithLogger(application.logger),
		model.WithArrangementCap(application.cfg.Scheduler.ArrangementCap),
	}
	if application.recorder != nil {
		options = append(options, model.WithRecorder(application.recorder))
	}
	return model.NewClassScheduler(options...)
}

// runSettings resolves the seed and attempts of a run, flags first then configuration
func (application *app) runSettings(cmd *cobra.Command) (seed uint64, attempts int) {
	seed, attempts = application.cfg.Scheduler.Seed, application.cfg.Scheduler.Attempts
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("attempts") {
		attempts, _ = cmd.Flags().GetInt("attempts")
	}
	return seed, attempts
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func (application *app) generate(cmd *cobra.Command, rawInput model.RawInput, out string) error {
	seed, attempts := application.runSettings(cmd)
	if attempts < 1 {
		return fmt.Errorf("attempts must be at least 1: %v", attempts)
	}

	scheduler := application.newScheduler()
	if err := rawInput.Populate(scheduler); err != nil {
		return err
	}

	valid, score := scheduler.GenerateBest(newRand(seed), attempts)

	output, err := marshalOutput(buildOutput(scheduler, valid, score))
	if err != nil {
		return fmt.Errorf("an error occurred while building output json: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), out, output); err != nil {
		return err
	}

	if !valid {
		return errInvalidSchedule
	}
	return nil
}

func (application *app) arrangements(cmd *cobra.Command, rawInput model.RawInput, show int) error {
	seed, _ := application.runSettings(cmd)

	scheduler := application.newScheduler()
	if err := rawInput.Populate(scheduler); err != nil {
		return err
	}
	scheduler.GenerateSchedule(newRand(seed))

	output, err := marshalOutput(buildTreeOutput(scheduler, application.cfg.Scheduler.ArrangementCap, show))
	if err != nil {
		return fmt.Errorf("an error occurred while building output json: %w", err)
	}
	return writeOutput(cmd.OutOrStdout(), "", output)
}
