package normalize

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/okian/meetglobe/internal/domain/model"
)

// LineError reports a roster line that could not be parsed.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// ParseRoster reads one "Name, City" participant per line. Blank lines and
// lines starting with '#' are skipped. The split happens on the last comma,
// so "Smith, Jr., Boston" yields name "Smith, Jr." and city "Boston".
// Malformed lines are reported and skipped; values are returned unnormalized.
func ParseRoster(text string) ([]model.Participant, []error) {
	var (
		out  []model.Participant
		errs []error
	)
	sc := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		i := strings.LastIndex(raw, ",")
		if i < 0 {
			errs = append(errs, &LineError{Line: line, Text: raw, Reason: "expected \"Name, City\""})
			continue
		}
		name := strings.TrimSpace(raw[:i])
		city := strings.TrimSpace(raw[i+1:])
		switch {
		case name == "":
			errs = append(errs, &LineError{Line: line, Text: raw, Reason: "missing name"})
		case city == "":
			errs = append(errs, &LineError{Line: line, Text: raw, Reason: "missing city"})
		default:
			out = append(out, model.Participant{Name: name, City: city})
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, fmt.Errorf("read roster: %w", err))
	}
	return out, errs
}
