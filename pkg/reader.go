package qvectors

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 64 * 1024 * 1024

// CollisionReader reads one JSON encoded Collision per line, skipping the
// first skip collisions and stopping after maxEvents.
type CollisionReader struct {
	file      *os.File
	scanner   *bufio.Scanner
	line      int
	EvtCount  int
	skip      int
	maxEvents int
}

func NewCollisionReader(r io.Reader, skip int, maxEvents int) *CollisionReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)
	return &CollisionReader{scanner: scanner, EvtCount: -1, skip: skip, maxEvents: maxEvents}
}

func OpenCollisionReader(filename string, skip int, maxEvents int) (*CollisionReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	reader := NewCollisionReader(file, skip, maxEvents)
	reader.file = file
	return reader, nil
}

// Next returns the next collision to process, or io.EOF.
func (r *CollisionReader) Next() (Collision, error) {
	for {
		if r.EvtCount+1 >= r.maxEvents {
			if configuration.Verbosity > 0 {
				logger.Info("Max events reached", "reader")
			}
			return Collision{}, io.EOF
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return Collision{}, fmt.Errorf("error reading line %d: %w", r.line+1, err)
			}
			return Collision{}, io.EOF
		}
		r.line++
		if len(r.scanner.Bytes()) == 0 {
			continue
		}
		r.EvtCount++
		if r.EvtCount < r.skip {
			if configuration.Verbosity > 1 {
				logger.Info(fmt.Sprintf("Skipping event %d", r.EvtCount), "reader")
			}
			continue
		}
		var collision Collision
		if err := json.Unmarshal(r.scanner.Bytes(), &collision); err != nil {
			return Collision{}, fmt.Errorf("error decoding collision on line %d: %w", r.line, err)
		}
		if configuration.Verbosity > 1 {
			message := fmt.Sprintf("Reading event %d with ID %d", r.EvtCount, collision.GlobalIndex)
			logger.Info(message, "reader")
		}
		return collision, nil
	}
}

func (r *CollisionReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
