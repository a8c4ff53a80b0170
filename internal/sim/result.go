package sim

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gridalign/gridalign/internal/errors"
)

// Assignment is one consumer's final assigned start time.
type Assignment struct {
	ID    string `json:"id"`
	Start int64  `json:"start"`
}

// WriteResult writes the result file: a header line with the achieved total
// grid energy, then one "<consumer ID> <assigned POSIX start>" line per
// consumer in construction order.
func WriteResult(path string, totalGridEnergy float64, assignments []Assignment) error {
	const op = "WriteResult"
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.KindResource, "create %s", path).
			WithComponent("sim").WithOperation(op)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Total grid energy %v\n", totalGridEnergy)
	for _, a := range assignments {
		fmt.Fprintf(w, "%s %d\n", a.ID, a.Start)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, errors.KindResource, "write %s", path).
			WithComponent("sim").WithOperation(op)
	}
	return nil
}

// ReadResult parses a result file back into the total grid energy and the
// per-consumer assignments, preserving file order.
func ReadResult(path string) (float64, []Assignment, error) {
	const op = "ReadResult"
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, errors.Wrapf(err, errors.KindResource, "open %s", path).
			WithComponent("sim").WithOperation(op)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, nil, errors.New(errors.KindInvalidInput, "empty result file").
			WithComponent("sim").WithOperation(op)
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 4 || header[0] != "Total" || header[1] != "grid" || header[2] != "energy" {
		return 0, nil, errors.Newf(errors.KindInvalidInput, "bad header line %q", scanner.Text()).
			WithComponent("sim").WithOperation(op)
	}
	total, err := strconv.ParseFloat(header[3], 64)
	if err != nil {
		return 0, nil, errors.Wrapf(err, errors.KindInvalidInput, "bad total %q", header[3]).
			WithComponent("sim").WithOperation(op)
	}

	var assignments []Assignment
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) != 2 {
			return 0, nil, errors.Newf(errors.KindInvalidInput, "bad assignment line %q", line).
				WithComponent("sim").WithOperation(op)
		}
		start, err := strconv.ParseInt(cols[1], 10, 64)
		if err != nil {
			return 0, nil, errors.Wrapf(err, errors.KindInvalidInput, "bad start time %q", cols[1]).
				WithComponent("sim").WithOperation(op)
		}
		assignments = append(assignments, Assignment{ID: cols[0], Start: start})
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, errors.Wrap(err, errors.KindResource, "reading result").
			WithComponent("sim").WithOperation(op)
	}
	return total, assignments, nil
}
