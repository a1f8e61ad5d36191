// Package pricing estimates the price of an assignment from its type, length and deadline.
package pricing

import (
	"fmt"
	"math"
)

const (
	MinWords     = 100
	MaxWords     = 5000
	wordsPerUnit = 500

	// reports shorter than this are clamped up to their floor price
	reportFloorWords = 2000
)

// AssignmentType is a priced kind of assignment.
type AssignmentType struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`          // per 500 words
	MinPrice  float64 `json:"min_price,omitempty"` // floor, reports under 2000 words only
}

// DeadlineOption is a delivery delay and its rush multiplier.
type DeadlineOption struct {
	Days       int     `json:"days"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	MaxPrice   float64 `json:"max_price,omitempty"` // ceiling
}

var (
	AssignmentTypes = []AssignmentType{
		{ID: "essay", Name: "Essay", BasePrice: 15},
		{ID: "report", Name: "Report", BasePrice: 18, MinPrice: 35},
		{ID: "case-study", Name: "Case Study", BasePrice: 20},
		{ID: "research-paper", Name: "Research Paper", BasePrice: 22},
		{ID: "programming", Name: "Programming Assignment", BasePrice: 25},
		{ID: "thesis", Name: "Thesis", BasePrice: 30},
	}

	DeadlineOptions = []DeadlineOption{
		{Days: 14, Label: "14 days", Multiplier: 1.0},
		{Days: 7, Label: "7 days", Multiplier: 1.2},
		{Days: 5, Label: "5 days", Multiplier: 1.3},
		{Days: 3, Label: "3 days", Multiplier: 1.5},
		{Days: 2, Label: "2 days", Multiplier: 1.8},
		{Days: 1, Label: "24 hours", Multiplier: 2.0, MaxPrice: 95},
	}
)

// OutOfRangeError is returned for inputs outside the priced tables or the word count range.
type OutOfRangeError struct {
	Field string
	Value interface{}
}

func (err OutOfRangeError) Error() string {
	switch err.Field {
	case "word_count":
		return fmt.Sprintf("word count must be between %d and %d", MinWords, MaxWords)
	case "deadline_days":
		return fmt.Sprintf("unsupported deadline: %v days", err.Value)
	}
	return fmt.Sprintf("unknown %s %q", err.Field, err.Value)
}

type Input struct {
	AssignmentType string `json:"assignment_type"`
	WordCount      int    `json:"word_count"`
	DeadlineDays   int    `json:"deadline_days"`
}

type Quote struct {
	Input
	EstimatedPrice int  `json:"estimated_price"`
	FloorApplied   bool `json:"floor_applied"`
	CeilingApplied bool `json:"ceiling_applied"`
}

func findType(id string) (AssignmentType, bool) {
	for _, t := range AssignmentTypes {
		if t.ID == id {
			return t, true
		}
	}
	return AssignmentType{}, false
}

func findDeadline(days int) (DeadlineOption, bool) {
	for _, d := range DeadlineOptions {
		if d.Days == days {
			return d, true
		}
	}
	return DeadlineOption{}, false
}

// Estimate prices in.
// The report floor is applied before the rush ceiling, so the ceiling always wins.
func Estimate(in Input) (Quote, error) {
	typ, ok := findType(in.AssignmentType)
	if !ok {
		return Quote{}, &OutOfRangeError{Field: "assignment_type", Value: in.AssignmentType}
	}
	if in.WordCount < MinWords || in.WordCount > MaxWords {
		return Quote{}, &OutOfRangeError{Field: "word_count", Value: in.WordCount}
	}
	deadline, ok := findDeadline(in.DeadlineDays)
	if !ok {
		return Quote{}, &OutOfRangeError{Field: "deadline_days", Value: in.DeadlineDays}
	}

	q := Quote{Input: in}
	price := typ.BasePrice * (float64(in.WordCount) / wordsPerUnit) * deadline.Multiplier

	if typ.MinPrice > 0 && in.WordCount < reportFloorWords && price < typ.MinPrice {
		price = typ.MinPrice
		q.FloorApplied = true
	}
	if deadline.MaxPrice > 0 && price > deadline.MaxPrice {
		price = deadline.MaxPrice
		q.CeilingApplied = true
	}

	q.EstimatedPrice = int(math.Round(price))
	return q, nil
}

type OptionTables struct {
	AssignmentTypes []AssignmentType `json:"assignment_types"`
	Deadlines       []DeadlineOption `json:"deadlines"`
	MinWords        int              `json:"min_words"`
	MaxWords        int              `json:"max_words"`
}

// Options returns the pricing tables offered to clients.
func Options() OptionTables {
	return OptionTables{
		AssignmentTypes: append([]AssignmentType(nil), AssignmentTypes...),
		Deadlines:       append([]DeadlineOption(nil), DeadlineOptions...),
		MinWords:        MinWords,
		MaxWords:        MaxWords,
	}
}
