package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bizhealth/internal/common"
	"github.com/ternarybob/bizhealth/internal/models"
	"github.com/ternarybob/bizhealth/internal/schemas"
	"github.com/ternarybob/bizhealth/internal/services/assessment"
	"github.com/ternarybob/bizhealth/internal/services/benchmark"
	"github.com/ternarybob/bizhealth/internal/storage"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles   configPaths // Multiple -config flags supported
	inputFile     = flag.String("input", "", "Assessment input file (YAML or JSON)")
	benchmarkFile = flag.String("benchmarks", "", "Benchmark table file (overrides config)")
	outputFile    = flag.String("out", "", "Write the insights model (or diagnostic draft) here; default stdout")
	showVersion   = flag.Bool("version", false, "Print version information")
	showVersionV  = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("BizHealth version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	os.Exit(run())
}

// run returns the process exit code: 0 delivered, 1 failed run, 2 setup error
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			dir, _ := common.LogsDir()
			path := common.WriteCrashFile(dir, r, common.Stack())
			fmt.Fprintf(os.Stderr, "bizhealth crashed: %v (report: %s)\n", r, path)
			code = 2
		}
	}()

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("bizhealth.toml"); err == nil {
			configFiles = append(configFiles, "bizhealth.toml")
		} else if _, err := os.Stat("deployments/local/bizhealth.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/bizhealth.toml")
		}
	}

	// 1. Load configuration (default -> file1 -> file2 -> ... -> env -> CLI)
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		return 2
	}
	common.ApplyFlagOverrides(config, *benchmarkFile)

	// 2. Initialize logger with final configuration
	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Debug().
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Str("framework_file", config.Engine.FrameworkFile).
		Str("benchmark_file", config.Engine.BenchmarkFile).
		Int("workers", config.Engine.Workers).
		Msg("Resolved configuration")

	if *inputFile == "" {
		logger.Error().Msg("No assessment input given; use -input")
		return 2
	}
	input, err := readInput(*inputFile)
	if err != nil {
		logger.Error().Err(err).Str("path", *inputFile).Msg("Failed to read assessment input")
		return 2
	}

	framework, err := loadFramework(config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load framework")
		return 2
	}

	var table *benchmark.Table
	if config.Engine.BenchmarkFile != "" {
		if table, err = benchmark.LoadTable(config.Engine.BenchmarkFile); err != nil {
			logger.Error().Err(err).Str("path", config.Engine.BenchmarkFile).Msg("Failed to load benchmark table")
			return 2
		}
		logger.Info().Str("version", table.Version()).Msg("Benchmark table loaded")
	}

	engine, err := assessment.NewEngine(logger, config, framework, table)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize assessment engine")
		return 2
	}

	store, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open storage")
		return 2
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := engine.Run(ctx, *input)
	if result == nil {
		logger.Error().Err(runErr).Msg("Assessment run produced no result")
		return 1
	}
	if runErr != nil {
		logger.Error().Err(runErr).Str("run_id", result.RunID).Msg("Assessment run failed")
	}

	if err := persist(ctx, logger, store, input.Profile.Name, result); err != nil {
		logger.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run")
	}

	if err := writeOutput(*outputFile, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write output")
		return 2
	}

	if runErr != nil || result.Status == models.AuditFail {
		var cve *models.ContractViolationError
		if errors.As(runErr, &cve) {
			logger.Warn().Strs("paths", cve.Paths()).Msg("Insights model withheld")
		}
		return 1
	}
	return 0
}

func loadFramework(config *common.Config) (*models.Framework, error) {
	if config.Engine.FrameworkFile == "" {
		return schemas.DefaultFramework()
	}
	return schemas.LoadFrameworkFile(config.Engine.FrameworkFile)
}
