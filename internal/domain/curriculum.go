package domain

import (
	"fmt"
	"regexp"
)

// Difficulty is the declared difficulty level of an item.
type Difficulty string

// Allowed difficulty levels, in display order.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists the allowed difficulty levels in display order.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// ItemType is the declared kind of an item.
type ItemType string

// Allowed item types, in display order.
const (
	ItemTypeGuide     ItemType = "guide"
	ItemTypeLesson    ItemType = "lesson"
	ItemTypeHandsOn   ItemType = "hands-on"
	ItemTypeProject   ItemType = "project"
	ItemTypeReference ItemType = "reference"
)

// ItemTypes lists the allowed item types in display order.
var ItemTypes = []ItemType{ItemTypeGuide, ItemTypeLesson, ItemTypeHandsOn, ItemTypeProject, ItemTypeReference}

// Placeholders used when an item reference lacks a value.
const (
	MissingUnitID = "(missing-unit-id)"
	MissingItemID = "(missing-id)"
	MissingPath   = "(missing-path)"
)

var kebabRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsKebabCase reports whether s is lowercase alphanumeric segments joined by
// single hyphens.
func IsKebabCase(s string) bool {
	return kebabRegex.MatchString(s)
}

// Unit is a named grouping of items.
type Unit struct {
	ID    string
	Title string
}

// Item is one lesson entry flattened out of the index. Fields that were
// missing or invalid in the index hold their zero value.
type Item struct {
	UnitID           string
	ID               string
	Title            string
	Path             string
	EstimatedMinutes float64
	PracticeMinutes  float64
	// HasAssignment is nil when the index value was missing or not a boolean.
	HasAssignment *bool
	Difficulty    Difficulty
	Type          ItemType
	Tags          []string
	Prerequisites []string
	// Seq is the item's position in the flattened, document-ordered sequence.
	Seq int
}

// Ref formats the item as "unit/item (path)" for use in messages.
func (it Item) Ref() string {
	return fmt.Sprintf("%s (%s)", it.ShortRef(), orPlaceholder(it.Path, MissingPath))
}

// ShortRef formats the item as "unit/item".
func (it Item) ShortRef() string {
	return orPlaceholder(it.UnitID, MissingUnitID) + "/" + orPlaceholder(it.ID, MissingItemID)
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// Curriculum is the read-only view of a loaded index.
type Curriculum struct {
	Units []Unit
	Items []Item
}
