package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log       LogConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
	Benchmark BenchmarkConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes schedule generation. A zero Seed draws a fresh random source per run.
type SchedulerConfig struct {
	Seed           uint64
	Attempts       int
	ArrangementCap int
}

type MetricsConfig struct {
	Enabled bool
}

type BenchmarkConfig struct {
	Seeds   int
	Output  string
	Timeout time.Duration // Per external run
}

// Load reads .env, then the optional config file at path, then the environment, which takes precedence
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config file: %w", err)
			}
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Seed:           v.GetUint64("SCHEDULER_SEED"),
		Attempts:       v.GetInt("SCHEDULER_ATTEMPTS"),
		ArrangementCap: v.GetInt("SCHEDULER_ARRANGEMENT_CAP"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("METRICS_ENABLED")}

	cfg.Benchmark = BenchmarkConfig{
		Seeds:   v.GetInt("BENCHMARK_SEEDS"),
		Output:  v.GetString("BENCHMARK_OUTPUT"),
		Timeout: parseDuration(v.GetString("BENCHMARK_TIMEOUT"), time.Minute),
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Scheduler.Attempts < 1:
		return fmt.Errorf("scheduler attempts must be at least 1: %v", cfg.Scheduler.Attempts)
	case cfg.Scheduler.ArrangementCap < 1:
		return fmt.Errorf("scheduler arrangement cap must be at least 1: %v", cfg.Scheduler.ArrangementCap)
	case cfg.Benchmark.Seeds < 1:
		return fmt.Errorf("benchmark seeds must be at least 1: %v", cfg.Benchmark.Seeds)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("SCHEDULER_SEED", 0)
	v.SetDefault("SCHEDULER_ATTEMPTS", 1)
	v.SetDefault("SCHEDULER_ARRANGEMENT_CAP", 1000)

	v.SetDefault("METRICS_ENABLED", false)

	v.SetDefault("BENCHMARK_SEEDS", 20)
	v.SetDefault("BENCHMARK_OUTPUT", "benchmark_results.csv")
	v.SetDefault("BENCHMARK_TIMEOUT", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
