package timeseries

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gridalign/gridalign/internal/errors"
)

// Event is one row of the consumer-events file: a load identity, its allowed
// start window in absolute POSIX seconds, and the path of its relative-time
// consumption profile.
type Event struct {
	ID           string
	EarliestStart int64
	LatestStart   int64
	ProfileFile   string
}

// splitColumns tokenizes a data line, tolerating comma, semicolon and
// whitespace separators in any mix.
func splitColumns(line string) []string {
	line = strings.ReplaceAll(line, ",", " ")
	line = strings.ReplaceAll(line, ";", " ")
	return strings.Fields(line)
}

// ParseSeries reads a two-column series (timestamp, cumulative energy) from r.
// An input with no data rows is an error, never an empty series.
func ParseSeries(r io.Reader) (*Series, error) {
	const op = "ParseSeries"
	series := NewSeries()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := splitColumns(line)
		if len(cols) != 2 {
			return nil, errors.Newf(errors.KindInvalidInput,
				"line %d: expected 2 columns, got %d", lineNo, len(cols)).
				WithComponent("timeseries").WithOperation(op)
		}
		t, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindInvalidInput,
				"line %d: bad timestamp %q", lineNo, cols[0]).
				WithComponent("timeseries").WithOperation(op)
		}
		v, err := strconv.ParseFloat(cols[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindInvalidInput,
				"line %d: bad energy value %q", lineNo, cols[1]).
				WithComponent("timeseries").WithOperation(op)
		}
		series.Set(t, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.KindResource, "reading series").
			WithComponent("timeseries").WithOperation(op)
	}
	if series.Len() == 0 {
		return nil, errors.New(errors.KindInvalidInput, "no data rows").
			WithComponent("timeseries").WithOperation(op)
	}
	return series, nil
}

// LoadSeries reads a two-column series file from disk.
func LoadSeries(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindResource, "open %s", path).
			WithComponent("timeseries").WithOperation("LoadSeries")
	}
	defer f.Close()
	return ParseSeries(f)
}

// ParseEvents reads the consumer-events table (ID, earliest start, latest
// start, consumption-profile path) from r, in row order.
func ParseEvents(r io.Reader) ([]Event, error) {
	const op = "ParseEvents"
	var events []Event

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := splitColumns(line)
		if len(cols) != 4 {
			return nil, errors.Newf(errors.KindInvalidInput,
				"line %d: expected 4 columns, got %d", lineNo, len(cols)).
				WithComponent("timeseries").WithOperation(op)
		}
		earliest, err := strconv.ParseInt(cols[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindInvalidInput,
				"line %d: bad earliest start %q", lineNo, cols[1]).
				WithComponent("timeseries").WithOperation(op)
		}
		latest, err := strconv.ParseInt(cols[2], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindInvalidInput,
				"line %d: bad latest start %q", lineNo, cols[2]).
				WithComponent("timeseries").WithOperation(op)
		}
		if latest < earliest {
			return nil, errors.Newf(errors.KindInvalidInput,
				"line %d: latest start %d before earliest start %d", lineNo, latest, earliest).
				WithComponent("timeseries").WithOperation(op)
		}
		events = append(events, Event{
			ID:            cols[0],
			EarliestStart: earliest,
			LatestStart:   latest,
			ProfileFile:   cols[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.KindResource, "reading events").
			WithComponent("timeseries").WithOperation(op)
	}
	if len(events) == 0 {
		return nil, errors.New(errors.KindInvalidInput, "no consumer events").
			WithComponent("timeseries").WithOperation(op)
	}
	return events, nil
}

// LoadEvents reads a consumer-events file from disk.
func LoadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindResource, "open %s", path).
			WithComponent("timeseries").WithOperation("LoadEvents")
	}
	defer f.Close()
	return ParseEvents(f)
}
