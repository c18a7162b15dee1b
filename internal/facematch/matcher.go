// Package facematch decides which stored face encoding, if any, belongs to a probe.
package facematch

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-engine/internal/constants"
	"github.com/kozaktomas/face-engine/internal/database"
	"gonum.org/v1/gonum/floats"
)

// ErrDimensionMismatch is returned when the probe and a stored encoding differ in length.
var ErrDimensionMismatch = errors.New("encoding dimension mismatch")

// Policy selects the winning candidate among those within tolerance.
type Policy string

const (
	// PolicyFirst returns the first candidate within tolerance in store order.
	// If two identities are both close enough, the one stored first wins.
	PolicyFirst Policy = constants.MatchPolicyFirst
	// PolicyBest returns the closest candidate within tolerance, ties go to store order.
	PolicyBest Policy = constants.MatchPolicyBest
)

// ParsePolicy converts a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFirst, PolicyBest:
		return Policy(s), nil
	case "":
		return PolicyFirst, nil
	}
	return "", fmt.Errorf("unknown match policy %q", s)
}

// Match is the accepted candidate.
type Match struct {
	UserID     int64
	EncodingID int64
	Distance   float64
}

// Matcher compares a probe against candidates by euclidean distance.
type Matcher struct {
	Tolerance float64
	Policy    Policy
}

// NewMatcher returns a matcher with the fixed recognition tolerance.
func NewMatcher(policy Policy) *Matcher {
	return &Matcher{
		Tolerance: constants.MatchTolerance,
		Policy:    policy,
	}
}

// Distance is the euclidean distance between two encodings of equal length.
func Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	return floats.Distance(a, b, 2), nil
}

// Match scans candidates in order. A candidate matches when its distance is <= Tolerance.
// An empty candidate set never matches. Any length mismatch is a hard error,
// even when an earlier candidate already matched under PolicyBest.
func (m *Matcher) Match(probe []float64, candidates []database.StoredEncoding) (Match, bool, error) {
	var (
		best  Match
		found bool
	)
	for _, c := range candidates {
		d, err := Distance(probe, c.Encoding)
		if err != nil {
			return Match{}, false, fmt.Errorf("encoding %d: %w", c.ID, err)
		}
		if d > m.Tolerance {
			continue
		}
		if m.Policy != PolicyBest {
			return Match{UserID: c.UserID, EncodingID: c.ID, Distance: d}, true, nil
		}
		if !found || d < best.Distance {
			best = Match{UserID: c.UserID, EncodingID: c.ID, Distance: d}
			found = true
		}
	}
	return best, found, nil
}
