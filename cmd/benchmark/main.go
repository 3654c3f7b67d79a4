package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/sectionscheduler/pkg/config"
	"github.com/limaJavier/sectionscheduler/pkg/logger"
	"github.com/limaJavier/sectionscheduler/pkg/metrics"
	"github.com/limaJavier/sectionscheduler/pkg/model"
)

const (
	inputDirectory         = "../../test/inputs/"
	MB             float32 = 1024 // In kilobytes, the unit /usr/bin/time reports
)

type StrategyType int

const (
	single StrategyType = iota
	best
)

type ResultType int

const (
	notMeasured ResultType = iota
	valid
	partial
	timeout
)

var (
	strategyTypes = map[StrategyType]string{
		single: "single",
		best:   "best",
	}
	resultTypes = map[ResultType]string{
		notMeasured: "not_measured",
		valid:       "valid",
		partial:     "partial",
		timeout:     "timeout",
	}
)

type TestMetadata struct {
	Name        string
	Teachers    int
	Courses     int
	Sections    int
	Preferences int
	Input       model.RawInput
}

type StrategyMetadata struct {
	Type     StrategyType
	Attempts int
}

type BenchmarkResult struct {
	Strategy      StrategyMetadata
	Test          TestMetadata
	Seeds         int
	SuccessRatio  float64
	MeanScore     float64
	MeanDuration  float64 // Milliseconds
	WallClock     int64   // External run, in milliseconds
	Memory        float32 // External run peak, in MB
	CpuPercentage int64
	Result        ResultType // External run
}

func main() {
	configPath := flag.String("config", "", "Path to a configuration file")
	executablePath := flag.String("executable", "", "Path to the scheduler CLI; when set every strategy is also run through /usr/bin/time to measure memory and CPU")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer zapLogger.Sync()

	recorder := metrics.NewRecorder()
	tests := getTests()
	strategies := getStrategies(cfg.Scheduler.Attempts)
	results := make([]BenchmarkResult, 0, len(tests)*len(strategies))

	for _, test := range tests {
		for _, strategy := range strategies {
			zapLogger.Info("benchmarking",
				zap.String("test", test.Name),
				zap.String("strategy", strategyTypes[strategy.Type]),
				zap.Int("attempts", strategy.Attempts),
			)

			result := sample(test, strategy, cfg, recorder)
			if *executablePath != "" {
				result.WallClock, result.Memory, result.CpuPercentage, result.Result = measure(*executablePath, strategy, test.Name, cfg.Benchmark.Timeout)
			}
			results = append(results, result)
		}
	}

	toCsv(results, cfg.Benchmark.Output)

	snapshot := recorder.Snapshot()
	zapLogger.Info("benchmark finished",
		zap.Int("results", len(results)),
		zap.Uint64("runs", snapshot.Runs),
		zap.Float64("success_ratio", snapshot.SuccessRatio),
		zap.Float64("average_score", snapshot.AverageScore),
		zap.Float64("average_duration_ms", snapshot.AverageDurationMs),
		zap.Uint64("unassigned_total", snapshot.UnassignedTotal),
	)
}

func getTests() []TestMetadata {
	testFiles, err := os.ReadDir(inputDirectory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	tests := make([]TestMetadata, 0, len(testFiles))
	for _, file := range testFiles {
		filename := inputDirectory + file.Name()
		input, err := model.InputFromFile(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}

		tests = append(tests, TestMetadata{
			Name:        filename,
			Teachers:    len(input.Teachers),
			Courses:     len(input.Courses),
			Sections:    len(input.Sections),
			Preferences: len(input.Preferences),
			Input:       input,
		})
	}

	return tests
}

func getStrategies(attempts int) []StrategyMetadata {
	strategies := []StrategyMetadata{
		{
			Type:     single,
			Attempts: 1,
		},

		{
			Type:     best,
			Attempts: 10,
		},
	}
	if attempts > 1 && attempts != 10 {
		strategies = append(strategies, StrategyMetadata{Type: best, Attempts: attempts})
	}
	return strategies
}

// sample runs the strategy once per seed in process and aggregates the outcomes
func sample(test TestMetadata, strategy StrategyMetadata, cfg *config.Config, recorder *metrics.Recorder) BenchmarkResult {
	result := BenchmarkResult{Strategy: strategy, Test: test, Seeds: cfg.Benchmark.Seeds}

	var validRuns int
	var scoreTotal, durationTotal float64
	for seed := range uint64(cfg.Benchmark.Seeds) {
		scheduler := model.NewClassScheduler(
			model.WithArrangementCap(cfg.Scheduler.ArrangementCap),
			model.WithRecorder(recorder),
		)
		if err := test.Input.Populate(scheduler); err != nil {
			log.Fatalf("cannot populate scheduler from \"%v\": %v", test.Name, err)
		}

		start := time.Now()
		ok, score := scheduler.GenerateBest(rand.New(rand.NewPCG(seed+1, cfg.Scheduler.Seed)), strategy.Attempts)
		durationTotal += float64(time.Since(start).Microseconds()) / 1000

		if ok {
			validRuns++
		}
		scoreTotal += score
	}

	runs := float64(cfg.Benchmark.Seeds)
	result.SuccessRatio = float64(validRuns) / runs
	result.MeanScore = scoreTotal / runs
	result.MeanDuration = durationTotal / runs
	return result
}

func measure(executablePath string, strategy StrategyMetadata, testFile string, limit time.Duration) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/usr/bin/time", "-v", executablePath, "generate", "--file", testFile, "--seed", "1", "--attempts", fmt.Sprint(strategy.Attempts))

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 0, 0, 0, timeout
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result = valid
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 2:
		result = partial
	default:
		log.Fatalf("an error occurred during the execution \"scheduler\" at test \"%v\" using strategy \"%v\": %v\n", testFile, strategyTypes[strategy.Type], stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

func toCsv(results []BenchmarkResult, output string) {
	file, err := os.Create(output)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader()); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		if err := writer.Write(csvRecord(result)); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func csvHeader() []string {
	return []string{"Strategy", "Attempts", "Test", "Teachers", "Courses", "Sections", "Preferences", "Seeds", "Success(%)", "Score", "Duration(ms)", "WallClock(ms)", "Memory(MB)", "CPU(%)", "Result"}
}

func csvRecord(result BenchmarkResult) []string {
	return []string{
		strategyTypes[result.Strategy.Type],
		fmt.Sprintf("%d", result.Strategy.Attempts),
		result.Test.Name,
		fmt.Sprintf("%d", result.Test.Teachers),
		fmt.Sprintf("%d", result.Test.Courses),
		fmt.Sprintf("%d", result.Test.Sections),
		fmt.Sprintf("%d", result.Test.Preferences),
		fmt.Sprintf("%d", result.Seeds),
		fmt.Sprintf("%.1f", result.SuccessRatio*100),
		fmt.Sprintf("%.3f", result.MeanScore),
		fmt.Sprintf("%.3f", result.MeanDuration),
		fmt.Sprintf("%d", result.WallClock),
		fmt.Sprintf("%.1f", result.Memory),
		fmt.Sprintf("%d", result.CpuPercentage),
		resultTypes[result.Result],
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.TrimSpace(strings.Split(line, "(h:mm:ss or m:ss):")[1])
	return parseDuration(durationStr)
}

// parseDuration converts the "h:mm:ss" or "m:ss" wall clock of /usr/bin/time into milliseconds
func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.TrimSpace(strings.Split(line, ":")[1])
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.TrimSpace(strings.Split(line, ":")[1])
	percentageStr = strings.TrimSuffix(percentageStr, "%")
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
