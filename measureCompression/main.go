package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	qvectors "github.com/next-exp/qvectors_go/pkg"
)

type Logger struct {
	log *slog.Logger
}

func (l Logger) Info(message string, module string) {
	l.log.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.log.Error(message)
}

var logger = Logger{log: slog.New(slog.NewTextHandler(os.Stderr, nil))}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	repetitions := flag.Int("repetitions", 3, "Writes per compression level")
	flag.Parse()

	if err := run(*configFilename, *repetitions); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configFilename string, repetitions int) error {
	configuration, err := loadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	qvectors.SetConfiguration(configuration)
	qvectors.SetLogger(logger)

	records, err := assembleRecords(configuration)
	if err != nil {
		return err
	}
	fmt.Println("Total events processed: ", len(records))

	enabled, err := qvectors.ParseSubsystems(configuration.Subsystems)
	if err != nil {
		return err
	}

	start := time.Now()
	for compressionLevel := 0; compressionLevel < 10; compressionLevel++ {
		configuration.CompressionLevel = compressionLevel
		qvectors.SetConfiguration(configuration)
		for i := 0; i < repetitions; i++ {
			duration, size, err := writeRecords(configuration.FileOut, enabled, records)
			if err != nil {
				return err
			}
			fmt.Printf("(hdf5, comp %d) Time: %d ms, size %d bytes\n", compressionLevel, duration.Milliseconds(), size)
		}
	}
	fmt.Printf("Total time: %d ms\n", time.Since(start).Milliseconds())
	return nil
}

func loadConfiguration(filename string) (qvectors.Configuration, error) {
	config := qvectors.DefaultConfiguration()
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, err
	}
	config.WriteData = true
	if err := validator.New().Struct(config); err != nil {
		return config, err
	}
	return config, nil
}

func openConditions(config qvectors.Configuration) (qvectors.ConditionsProvider, func() error, error) {
	if strings.HasPrefix(config.Conditions, qvectors.LocalPrefix) {
		local, err := qvectors.LoadLocalConditions(config.Conditions)
		return local, func() error { return nil }, err
	}
	dbConn, err := qvectors.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return nil, nil, err
	}
	return qvectors.NewDBConditions(dbConn), dbConn.Close, nil
}

// assembleRecords processes the whole input once so that every compression
// level writes the same records.
func assembleRecords(config qvectors.Configuration) ([]qvectors.EventRecord, error) {
	provider, closeConditions, err := openConditions(config)
	if err != nil {
		return nil, fmt.Errorf("Error opening conditions: %w", err)
	}
	defer closeConditions()

	reader, err := qvectors.OpenCollisionReader(config.FileIn, config.Skip, config.MaxEvents)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	enabled, err := qvectors.ParseSubsystems(config.Subsystems)
	if err != nil {
		return nil, err
	}
	assembler := qvectors.NewAssembler(qvectors.NewRunCache(provider, config.Harmonics), qvectors.AssemblerOptions{
		Harmonics: config.Harmonics,
		Enabled:   enabled,
		Estimator: qvectors.CentEstimator(config.CentEstimator),
		Cuts:      qvectors.TrackCuts{MinPt: config.MinPt, MaxPt: config.MaxPt},
	})

	records := make([]qvectors.EventRecord, 0)
	for {
		collision, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error reading event: %w", err)
		}
		record, err := assembler.Process(&collision)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		assembler.Emitted()
	}
}

func writeRecords(filename string, enabled qvectors.SubsystemSet, records []qvectors.EventRecord) (time.Duration, int64, error) {
	start := time.Now()
	writer, err := qvectors.NewWriter(filename, enabled)
	if err != nil {
		return 0, 0, err
	}
	for i := range records {
		if err := writer.WriteEvent(&records[i]); err != nil {
			return 0, 0, errors.Join(err, writer.Close())
		}
	}
	if err := writer.Close(); err != nil {
		return 0, 0, err
	}
	duration := time.Since(start)

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return 0, 0, fmt.Errorf("Error getting file info: %w", err)
	}
	return duration, fileInfo.Size(), nil
}
