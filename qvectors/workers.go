package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	qvectors "github.com/next-exp/qvectors_go/pkg"
	"golang.org/x/sync/errgroup"
)

type WorkerData struct {
	Seq       int
	Collision qvectors.Collision
}

// WorkerResult carries the record of job Seq. Record is nil when the event was
// discarded.
type WorkerResult struct {
	Seq    int
	Record *qvectors.EventRecord
}

// CollisionSource is satisfied by *qvectors.CollisionReader.
type CollisionSource interface {
	Next() (qvectors.Collision, error)
}

// RecordSink is satisfied by *qvectors.Writer.
type RecordSink interface {
	WriteEvent(record *qvectors.EventRecord) error
}

// runPipeline reads collisions, assembles them on configuration.NumWorkers
// workers and hands the records to sink in input order. sink may be nil. It
// returns the number of records produced.
func runPipeline(ctx context.Context, source CollisionSource, cache *qvectors.RunCache,
	options qvectors.AssemblerOptions, sink RecordSink) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan WorkerData, 100)
	results := make(chan WorkerResult, 100)

	g.Go(func() error {
		return sendEventsToWorkers(ctx, source, jobs)
	})

	var workers sync.WaitGroup
	for w := 1; w <= max(configuration.NumWorkers, 1); w++ {
		workers.Add(1)
		assembler := qvectors.NewAssembler(cache, options)
		g.Go(func() error {
			defer workers.Done()
			return worker(ctx, w, assembler, jobs, results)
		})
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	var written int
	g.Go(func() error {
		var err error
		written, err = processWorkerResults(ctx, results, sink)
		return err
	})

	err := g.Wait()
	return written, err
}

func sendEventsToWorkers(ctx context.Context, source CollisionSource, jobs chan<- WorkerData) error {
	defer close(jobs)
	for seq := 0; ; seq++ {
		collision, err := source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading event: %w", err)
		}
		select {
		case jobs <- WorkerData{Seq: seq, Collision: collision}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func worker(ctx context.Context, id int, assembler *qvectors.Assembler,
	jobs <-chan WorkerData, results chan<- WorkerResult) error {
	for job := range jobs {
		if configuration.Verbosity > 1 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, job.Collision.GlobalIndex), "workers")
		}
		record, err := processCollision(assembler, &job.Collision)
		if err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}
		select {
		case results <- WorkerResult{Seq: job.Seq, Record: record}:
			if record != nil {
				assembler.Emitted()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// processCollision returns a nil record when the event panicked. Errors are
// fatal for the whole run.
func processCollision(assembler *qvectors.Assembler, collision *qvectors.Collision) (record *qvectors.EventRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("recovered from panic on event %d: %v", collision.GlobalIndex, r)
			logger.Error(errMessage.Error())
			logger.Error(fmt.Sprintf("discarding event %d", collision.GlobalIndex))
			record, err = nil, nil
		}
	}()

	result, err := assembler.Process(collision)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// processWorkerResults reorders the results by sequence number and writes
// them.
func processWorkerResults(ctx context.Context, results <-chan WorkerResult, sink RecordSink) (int, error) {
	pending := make(map[int]WorkerResult)
	next := 0
	written := 0
	for result := range results {
		pending[result.Seq] = result
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if ready.Record == nil {
				continue
			}
			if sink != nil {
				if err := sink.WriteEvent(ready.Record); err != nil {
					return written, err
				}
			}
			written++
		}
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
	}
	return written, nil
}
