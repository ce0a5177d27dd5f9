package receipt

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidParticipants is returned when the participant list cannot be used
// to split a receipt.
var ErrInvalidParticipants = errors.New("invalid participants")

const minParticipants = 2

var participantRe = regexp.MustCompile(`^[0-9a-zA-Z_]{1,16}$`)

// ParseParticipants cleans up participant names as typed into a form. Blank
// names are ignored, inner spaces become underscores and duplicates are
// dropped. The result is sorted.
func ParseParticipants(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		name = strings.Join(strings.Fields(name), "_")
		if !participantRe.MatchString(name) {
			return nil, fmt.Errorf("%w: %q may only contain letters, digits and underscores (at most 16)", ErrInvalidParticipants, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) < minParticipants {
		return nil, fmt.Errorf("%w: need at least %d participants, got %d", ErrInvalidParticipants, minParticipants, len(out))
	}
	sort.Strings(out)
	return out, nil
}
