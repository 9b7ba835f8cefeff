package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	qvectors "github.com/next-exp/qvectors_go/pkg"
)

// EnvPrefix is the prefix of the environment variables overriding the
// configuration file, e.g. QVEC_PASS or QVEC_NUMWORKERS.
const EnvPrefix = "QVEC"

// LoadConfiguration reads the JSON configuration file on top of the default
// values, applies the environment overrides and validates the result.
func LoadConfiguration(filename string) (qvectors.Configuration, error) {
	config := qvectors.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return config, fmt.Errorf("error reading environment: %w", err)
	}
	if err := validateConfiguration(config); err != nil {
		return config, err
	}
	return config, nil
}

func validateConfiguration(config qvectors.Configuration) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := qvectors.ParseSubsystems(config.Subsystems); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func printConfiguration(config qvectors.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Metrics file: %s", config.MetricsFile), "config")
	logger.Info(fmt.Sprintf("Conditions: %s", config.Conditions), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Centrality estimator: %v", qvectors.CentEstimator(config.CentEstimator)), "config")
	logger.Info(fmt.Sprintf("Harmonics: %v", config.Harmonics), "config")
	logger.Info(fmt.Sprintf("Track pt window: [%g, %g]", config.MinPt, config.MaxPt), "config")
	logger.Info(fmt.Sprintf("Sub-systems: %v", config.Subsystems), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
}
