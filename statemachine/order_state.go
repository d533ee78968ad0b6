package statemachine

import (
	"fmt"
	"strings"

	"food-ordering-api/models"
)

// lifecycle is the conventional order of statuses. Restaurant staff may set
// any of them at any time; the order here is informational only.
var lifecycle = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

// index is built once for O(1) membership and position lookups
var index = func() map[models.OrderStatus]int {
	m := make(map[models.OrderStatus]int, len(lifecycle))
	for i, s := range lifecycle {
		m[s] = i
	}
	return m
}()

// IsValid reports whether s is one of the recognised statuses
func IsValid(s models.OrderStatus) bool {
	_, ok := index[s]
	return ok
}

// Parse converts raw input into a status. Matching is exact: the stored
// value is persisted verbatim, so "Pending" is rejected rather than folded.
func Parse(raw string) (models.OrderStatus, error) {
	s := models.OrderStatus(raw)
	if !IsValid(s) {
		return "", fmt.Errorf("Status must be one of: %s", joined())
	}
	return s, nil
}

// position returns the index of s in the lifecycle, or -1
func position(s models.OrderStatus) int {
	if i, ok := index[s]; ok {
		return i
	}
	return -1
}

// Next returns the conventional next status. ok is false for delivered
// and for unknown input.
func Next(s models.OrderStatus) (next models.OrderStatus, ok bool) {
	i := position(s)
	if i < 0 || i == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[i+1], true
}

// Step describes one status for the public documentation endpoint
type Step struct {
	Status models.OrderStatus `json:"status"`
	Next   models.OrderStatus `json:"next,omitempty"`
}

// Describe returns the lifecycle with each status's conventional successor
func Describe() []Step {
	steps := make([]Step, 0, len(lifecycle))
	for _, s := range lifecycle {
		n, _ := Next(s)
		steps = append(steps, Step{Status: s, Next: n})
	}
	return steps
}

func joined() string {
	parts := make([]string, len(lifecycle))
	for i, s := range lifecycle {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
