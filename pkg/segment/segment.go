// Package segment maps RFM score triplets to named customer segments.
package segment

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Segment is a closed set of segment names. Unknown is the fallback for names
// that do not belong to the catalog.
type Segment int

const (
	Unknown Segment = iota
	Champions
	LoyalCustomers
	AtRisk
	RecentCustomers
	Lost
	NeedAttention
	PotentialLoyalists
	CantLoseThem
	BigSpenders
)

var names = map[Segment]string{
	Unknown:            "Unknown",
	Champions:          "Champions",
	LoyalCustomers:     "Loyal Customers",
	AtRisk:             "At Risk",
	RecentCustomers:    "Recent Customers",
	Lost:               "Lost",
	NeedAttention:      "Need Attention",
	PotentialLoyalists: "Potential Loyalists",
	CantLoseThem:       "Cant Lose Them",
	BigSpenders:        "Big Spenders",
}

func (s Segment) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return names[Unknown]
}

// Parse returns the segment with the given display name, or Unknown.
func Parse(name string) Segment {
	for s, n := range names {
		if n == name {
			return s
		}
	}
	return Unknown
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Segment) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*s = Parse(name)
	return nil
}

// Score is an RFM triplet, each component in [1,5]. Higher recency means more recent.
type Score struct {
	Recency   int `json:"recency_score"`
	Frequency int `json:"frequency_score"`
	Monetary  int `json:"monetary_score"`
}

func (s Score) String() string {
	return fmt.Sprintf("R%d F%d M%d", s.Recency, s.Frequency, s.Monetary)
}

// ErrInvalidScore marks every InvalidScoreError.
var ErrInvalidScore = errors.New("rfm score out of range")

// InvalidScoreError reports a score component outside [1,5]. It is a defect in
// the scoring stage, never a user error.
type InvalidScoreError struct {
	CustomerID string
	Dimension  string
	Value      int
}

func (e *InvalidScoreError) Error() string {
	if e.CustomerID != "" {
		return fmt.Sprintf("customer %q: %s score %d outside [1,5]", e.CustomerID, e.Dimension, e.Value)
	}
	return fmt.Sprintf("%s score %d outside [1,5]", e.Dimension, e.Value)
}

// Is lets errors.Is match ErrInvalidScore.
func (e *InvalidScoreError) Is(target error) bool {
	return target == ErrInvalidScore
}

// Validate checks every component of s.
func (s Score) Validate() error {
	for _, d := range []struct {
		name  string
		value int
	}{
		{"recency", s.Recency},
		{"frequency", s.Frequency},
		{"monetary", s.Monetary},
	} {
		if d.value < 1 || d.value > 5 {
			return &InvalidScoreError{Dimension: d.name, Value: d.value}
		}
	}
	return nil
}

// rule is one row of the decision table. Rows are evaluated in order.
type rule struct {
	segment Segment
	match   func(Score) bool
}

var rules = []rule{
	{Champions, func(s Score) bool { return s.Recency >= 4 && s.Frequency >= 4 && s.Monetary >= 4 }},
	{LoyalCustomers, func(s Score) bool { return s.Recency >= 3 && s.Frequency >= 3 }},
	{AtRisk, func(s Score) bool { return s.Recency <= 2 && s.Frequency >= 3 }},
	{RecentCustomers, func(s Score) bool { return s.Recency >= 4 && s.Frequency <= 2 }},
	{Lost, func(s Score) bool { return s.Recency <= 2 && s.Frequency <= 2 }},
}

// Classify returns the first segment of the rule table matching s, NeedAttention
// when none does. Out of range scores return an *InvalidScoreError.
func Classify(s Score) (Segment, error) {
	if err := s.Validate(); err != nil {
		return Unknown, err
	}
	for _, r := range rules {
		if r.match(s) {
			return r.segment, nil
		}
	}
	return NeedAttention, nil
}
