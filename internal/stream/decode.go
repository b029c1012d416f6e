package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Decode reads newline-delimited events until EOF, invoking fn for each one
// in order. A malformed line is skipped individually - one bad line must not
// abort the rest of the stream. fn returning an error stops the read early.
func Decode(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Collect drains a stream into memory. Returns the events in order and
// whether a final event was seen - its absence means the stream failed.
func Collect(r io.Reader) (events []Event, sawFinal bool, err error) {
	err = Decode(r, func(ev Event) error {
		events = append(events, ev)
		if ev.Type == EventFinal {
			sawFinal = true
		}
		return nil
	})
	return events, sawFinal, err
}
