package timeparsing

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var nlpParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseNaturalLanguage parses expressions like "tomorrow", "next monday",
// "in 2 hours" relative to now. Returns an error when nothing in the input
// looks like a date or time.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := nlpParser.Parse(strings.TrimSpace(s), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("natural language parse: %w", err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("not a recognized date expression: %q", s)
	}
	return r.Time, nil
}

// ParseRelativeTime resolves a time expression through the layers in order:
// compact duration, absolute timestamp (RFC3339 or date-only), then natural
// language.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time expression: %q", s)
}
