package models

import "strings"

// DurationUnit is the unit a course duration is expressed in.
type DurationUnit string

// Supported duration units.
const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
)

// DurationUnits lists the units in display order.
var DurationUnits = []DurationUnit{DurationDays, DurationWeeks, DurationMonths}

// Course is a course record as served by the remote API.
type Course struct {
	ID            int64        `json:"id"`
	CourseName    string       `json:"course_name"`
	DurationValue int          `json:"duration_value"`
	DurationUnit  DurationUnit `json:"duration_unit"`
}

// CourseInput is the create/update payload for a course.
type CourseInput struct {
	CourseName    string       `json:"course_name" label:"name" validate:"notblank"`
	DurationValue int          `json:"duration_value" label:"duration" validate:"gt=0"`
	DurationUnit  DurationUnit `json:"duration_unit" label:"duration unit" validate:"oneof=days weeks months"`
}

// Input returns the editable fields of the course.
func (c Course) Input() CourseInput {
	return CourseInput{CourseName: c.CourseName, DurationValue: c.DurationValue, DurationUnit: c.DurationUnit}
}

// NormalizeName folds a name for case-insensitive comparisons.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
