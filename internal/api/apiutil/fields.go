package apiutil

import (
	"strconv"
	"strings"

	"github.com/codr1/courtbook/internal/models"
)

func ParsePositiveIntField(raw string, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, models.FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, models.FieldError{Field: field, Reason: "must be a positive integer"}
	}
	return value, nil
}

func ParsePositiveFloatField(raw string, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, models.FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, models.FieldError{Field: field, Reason: "must be a positive number"}
	}
	return value, nil
}
