package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Reader parses a text trace. Each line is one event:
//
//	F <addr> <bytes>    instruction fetch
//	L <addr> <bytes>    data load
//	S <addr> <bytes>    data store
//
// Addresses may be decimal or 0x-prefixed hexadecimal. Blank lines and
// lines starting with # are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next event in the trace. It returns io.EOF when the
// trace is exhausted.
func (r *Reader) Next() (Event, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		e, err := r.parseLine(text)
		if err != nil {
			return Event{}, err
		}

		return e, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}

	return Event{}, io.EOF
}

// ReadAll drains the trace into a slice.
func (r *Reader) ReadAll() ([]Event, error) {
	var events []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}

		events = append(events, e)
	}
}

func (r *Reader) parseLine(text string) (Event, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return Event{}, fmt.Errorf(
			"trace line %d: expecting \"F|L|S addr bytes\", got %q",
			r.line, text)
	}

	var e Event
	switch fields[0] {
	case "F", "f":
		e.Type = Fetch
	case "L", "l":
		e.Type = Load
	case "S", "s":
		e.Type = Store
	default:
		return Event{}, fmt.Errorf(
			"trace line %d: unknown access type %q", r.line, fields[0])
	}

	addr, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return Event{}, fmt.Errorf(
			"trace line %d: bad address %q", r.line, fields[1])
	}
	e.Addr = addr

	bytes, err := strconv.ParseUint(fields[2], 0, 64)
	if err != nil || bytes == 0 {
		return Event{}, fmt.Errorf(
			"trace line %d: bad byte count %q", r.line, fields[2])
	}
	e.Bytes = bytes

	return e, nil
}
