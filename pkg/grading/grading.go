// Package grading maps total course scores onto letter grades and grade points
// for the grading scales a group can be configured with.
package grading

import (
	"fmt"
	"strings"
)

// System identifies a recognised grading scale.
type System string

const (
	FivePoint   System = "5-point"
	FourPoint   System = "4-point"
	Polytechnic System = "polytechnic"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Band is the lowest score that earns Grade and Points.
type Band struct {
	Min    int
	Grade  string
	Points float64
}

// Scale is a descending list of bands whose last band starts at MinScore.
type Scale struct {
	System System
	Bands  []Band
}

// Mapping is the outcome of mapping one score.
type Mapping struct {
	Grade  string  `json:"grade"`
	Points float64 `json:"points"`
}

var scales = map[System]Scale{
	FivePoint: {System: FivePoint, Bands: []Band{
		{Min: 70, Grade: "A", Points: 5},
		{Min: 60, Grade: "B", Points: 4},
		{Min: 50, Grade: "C", Points: 3},
		{Min: 45, Grade: "D", Points: 2},
		{Min: 40, Grade: "E", Points: 1},
		{Min: 0, Grade: "F", Points: 0},
	}},
	FourPoint: {System: FourPoint, Bands: []Band{
		{Min: 70, Grade: "A", Points: 4},
		{Min: 60, Grade: "B", Points: 3},
		{Min: 50, Grade: "C", Points: 2},
		{Min: 45, Grade: "D", Points: 1},
		{Min: 0, Grade: "F", Points: 0},
	}},
	Polytechnic: {System: Polytechnic, Bands: []Band{
		{Min: 75, Grade: "A", Points: 4},
		{Min: 70, Grade: "AB", Points: 3.5},
		{Min: 65, Grade: "B", Points: 3.25},
		{Min: 60, Grade: "BC", Points: 3},
		{Min: 55, Grade: "C", Points: 2.75},
		{Min: 50, Grade: "CD", Points: 2.5},
		{Min: 45, Grade: "D", Points: 2.25},
		{Min: 40, Grade: "E", Points: 2},
		{Min: 0, Grade: "F", Points: 0},
	}},
}

// Systems lists every recognised grading system identifier.
func Systems() []System {
	return []System{FivePoint, FourPoint, Polytechnic}
}

// Validate resolves an identifier into its Scale.
func Validate(identifier string) (Scale, error) {
	scale, ok := scales[System(strings.ToLower(strings.TrimSpace(identifier)))]
	if !ok {
		return Scale{}, fmt.Errorf("unrecognised grade system %q", identifier)
	}
	return scale, nil
}

// IsValid reports whether identifier names a recognised grading system.
func IsValid(identifier string) bool {
	_, err := Validate(identifier)
	return err == nil
}

// Map returns the grade for score. Scores outside 0-100 are clamped.
func (s Scale) Map(score int) Mapping {
	if score < MinScore {
		score = MinScore
	}
	if score > MaxScore {
		score = MaxScore
	}
	for _, band := range s.Bands {
		if score >= band.Min {
			return Mapping{Grade: band.Grade, Points: band.Points}
		}
	}
	last := s.Bands[len(s.Bands)-1]
	return Mapping{Grade: last.Grade, Points: last.Points}
}

// IsFail reports whether grade is the failing letter, ignoring case.
func IsFail(grade string) bool {
	return strings.EqualFold(strings.TrimSpace(grade), "F")
}
