package id

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ShortLen is the number of trailing characters Short keeps. The head of a
// UUIDv7 is its timestamp, so only the random tail tells records apart.
const ShortLen = 8

var (
	// ErrNoMatch is returned when no id starts or ends with the given text.
	ErrNoMatch = errors.New("no matching id")
	// ErrAmbiguous is returned when several ids match the given text.
	ErrAmbiguous = errors.New("ambiguous id")
)

// New returns a fresh time-ordered record id (UUIDv7).
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Short returns the display form of an id.
func Short(id string) string {
	if len(id) <= ShortLen {
		return id
	}
	return id[len(id)-ShortLen:]
}

// Match resolves part to exactly one of ids. part may be the full id, a
// prefix of it, or a suffix such as the form Short prints.
func Match(ids []string, part string) (string, error) {
	part = strings.ToLower(strings.TrimSpace(part))
	if part == "" {
		return "", fmt.Errorf("%w: empty id", ErrNoMatch)
	}

	var found string
	for _, candidate := range ids {
		if candidate == part {
			return candidate, nil
		}
		if strings.HasPrefix(candidate, part) || strings.HasSuffix(candidate, part) {
			if found != "" {
				return "", fmt.Errorf("%w: %q", ErrAmbiguous, part)
			}
			found = candidate
		}
	}
	if found == "" {
		return "", fmt.Errorf("%w: %q", ErrNoMatch, part)
	}
	return found, nil
}

// FormatSessionName returns a session name like "Session #3".
func FormatSessionName(seq int) string {
	return fmt.Sprintf("Session #%d", seq)
}

// ParseSessionName parses "Session #3" into 3.
func ParseSessionName(name string) (int, error) {
	num, ok := strings.CutPrefix(name, "Session #")
	if !ok {
		return 0, fmt.Errorf("invalid session name: %q", name)
	}
	seq, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in session name %q: %w", name, err)
	}
	return seq, nil
}
