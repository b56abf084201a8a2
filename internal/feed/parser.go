package feed

import (
	"strconv"
	"strings"
)

const (
	DefaultDelimiter = ","
	fieldCount       = 6
)

// Parser splits data lines on a fixed delimiter.
type Parser struct {
	Delimiter string
}

func NewParser(delimiter string) Parser {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return Parser{Delimiter: delimiter}
}

// ParseLine turns one line of the form code,atm,interval,grade,suppress,threshold
// into a record. It returns ErrSkip when the line does not have exactly six
// fields or the code is empty, and a *ParseError when a numeric field is not
// a number.
func (p Parser) ParseLine(line string) (DataRecord, error) {
	delim := p.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	tokens := strings.Split(strings.TrimRight(line, "\r\n"), delim)
	if len(tokens) != fieldCount {
		return DataRecord{}, ErrSkip
	}
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if tokens[0] == "" {
		return DataRecord{}, ErrSkip
	}
	rec := DataRecord{Code: tokens[0], ValidTime: tokens[1]}
	var err error
	if rec.IntervalMinutes, err = parseInt("interval", tokens[2]); err != nil {
		return DataRecord{}, err
	}
	if rec.Grade, err = parseInt("grade", tokens[3]); err != nil {
		return DataRecord{}, err
	}
	if rec.SuppressFlag, err = parseFloat("suppress", tokens[4]); err != nil {
		return DataRecord{}, err
	}
	if rec.Threshold, err = parseFloat("threshold", tokens[5]); err != nil {
		return DataRecord{}, err
	}
	return rec, nil
}

func parseInt(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ParseError{Field: field, Value: value, Err: err}
	}
	return n, nil
}

func parseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: value, Err: err}
	}
	return f, nil
}
