package feed

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// NumericPolicy decides what a non-numeric value in a numeric column does to
// the load of the whole file.
type NumericPolicy string

const (
	// PolicyAbort fails the whole load, leaving the table untouched.
	PolicyAbort NumericPolicy = "abort"
	// PolicySkip drops only the offending line.
	PolicySkip NumericPolicy = "skip"
)

func ParseNumericPolicy(s string) (NumericPolicy, error) {
	switch NumericPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown numeric error policy %q (want abort or skip)", s)
	}
}

// LoadStats counts what happened to the lines of one file.
type LoadStats struct {
	Lines          int
	Records        int
	SkippedArity   int
	SkippedNumeric int
}

type Loader struct {
	Parser         Parser
	OnNumericError NumericPolicy
}

func NewLoader(parser Parser, policy NumericPolicy) Loader {
	if policy == "" {
		policy = PolicyAbort
	}
	return Loader{Parser: parser, OnNumericError: policy}
}

// LoadFile reads a data file, discarding its header line, and returns the
// parsed records in file order.
func (l Loader) LoadFile(path string) ([]DataRecord, LoadStats, error) {
	var stats LoadStats
	f, err := os.Open(path)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	records := []DataRecord{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		stats.Lines++
		rec, err := l.Parser.ParseLine(scanner.Text())
		if err != nil {
			if errors.Is(err, ErrSkip) {
				stats.SkippedArity++
				continue
			}
			if l.OnNumericError == PolicySkip {
				stats.SkippedNumeric++
				continue
			}
			return nil, stats, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", path, err)
	}
	stats.Records = len(records)
	return records, stats, nil
}
