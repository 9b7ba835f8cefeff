package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	qvectors "github.com/next-exp/qvectors_go/pkg"
)

var (
	configuration qvectors.Configuration
	logger        Logger
)

func init() {
	logger = newLogger(os.Stdout, os.Stderr)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	if err := run(*configFilename); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configFilename string) error {
	var err error
	configuration, err = LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	qvectors.SetConfiguration(configuration)
	qvectors.SetLogger(logger)

	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading configuration file: %s", configFilename), "main")
		printConfiguration(configuration, logger)
	}

	provider, closeConditions, err := openConditions(configuration)
	if err != nil {
		return err
	}
	defer closeConditions()

	reader, err := qvectors.OpenCollisionReader(configuration.FileIn, configuration.Skip, configuration.MaxEvents)
	if err != nil {
		return err
	}
	defer reader.Close()

	enabled, err := qvectors.ParseSubsystems(configuration.Subsystems)
	if err != nil {
		return err
	}

	var writer *qvectors.Writer
	var sink RecordSink
	if configuration.WriteData {
		writer, err = qvectors.NewWriter(configuration.FileOut, enabled)
		if err != nil {
			return fmt.Errorf("Error creating output file: %w", err)
		}
		sink = writer
	}

	options := qvectors.AssemblerOptions{
		Harmonics: configuration.Harmonics,
		Enabled:   enabled,
		Estimator: qvectors.CentEstimator(configuration.CentEstimator),
		Cuts:      qvectors.TrackCuts{MinPt: configuration.MinPt, MaxPt: configuration.MaxPt},
	}
	cache := qvectors.NewRunCache(provider, configuration.Harmonics)

	start := time.Now()
	written, err := runPipeline(context.Background(), reader, cache, options, sink)
	if writer != nil {
		err = errors.Join(err, writer.Close())
	}
	if err != nil {
		return err
	}
	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Events processed: %d in %d ms, run reloads: %d",
		written, duration.Milliseconds(), cache.Reloads()), "main")

	if configuration.MetricsFile != "" {
		if err := qvectors.WriteMetrics(configuration.MetricsFile); err != nil {
			return fmt.Errorf("Error writing metrics: %w", err)
		}
	}
	return nil
}

// openConditions selects the conditions source: "local://<file>" reads a JSON
// file, anything else connects to the conditions database.
func openConditions(config qvectors.Configuration) (qvectors.ConditionsProvider, func() error, error) {
	if path, ok := strings.CutPrefix(config.Conditions, qvectors.LocalPrefix); ok {
		if config.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Reading conditions from %s", path), "main")
		}
		local, err := qvectors.LoadLocalConditions(path)
		if err != nil {
			return nil, nil, fmt.Errorf("Error reading local conditions: %w", err)
		}
		return local, func() error { return nil }, nil
	}

	dbConn, err := qvectors.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return nil, nil, fmt.Errorf("Error connection to database: %w", err)
	}
	return qvectors.NewDBConditions(dbConn), dbConn.Close, nil
}
