// Package slots holds the pure rules for guide availability blocks and the
// status machines of slots and reservations.
package slots

import (
	"errors"
	"sort"
	"time"

	"github.com/wanderguide/marketplace-api/internal/models"
)

var (
	ErrInvalidDuration       = errors.New("duration must be 4, 6 or 8 hours")
	ErrStartInPast           = errors.New("slot must start in the future")
	ErrOverlap               = errors.New("slot overlaps an existing slot")
	ErrInvalidSlotTransition = errors.New("invalid slot status transition")
	ErrInvalidTransition     = errors.New("invalid reservation status transition")
)

var AllowedDurations = []int{4, 6, 8}

func ValidDuration(hours int) bool {
	for _, d := range AllowedDurations {
		if d == hours {
			return true
		}
	}
	return false
}

type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, hours int) Interval {
	start = start.UTC()
	return Interval{Start: start, End: start.Add(time.Duration(hours) * time.Hour)}
}

// Overlaps treats intervals as half-open, so back-to-back blocks are allowed.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ValidateNew checks a batch of new blocks against each other and the guide's
// existing non-closed blocks.
func ValidateNew(candidates []Interval, existing []Interval, now time.Time) error {
	sorted := make([]Interval, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	for i, c := range sorted {
		if !c.Start.After(now) {
			return ErrStartInPast
		}
		if i > 0 && Overlaps(sorted[i-1], c) {
			return ErrOverlap
		}
		for _, e := range existing {
			if Overlaps(c, e) {
				return ErrOverlap
			}
		}
	}
	return nil
}

var slotTransitions = map[models.SlotStatus][]models.SlotStatus{
	models.SlotOpen:    {models.SlotPending, models.SlotClosed},
	models.SlotPending: {models.SlotBooked, models.SlotOpen},
	models.SlotBooked:  {models.SlotOpen},
	models.SlotClosed:  {models.SlotOpen},
}

// Guides may only toggle a slot between open and closed. Pending and booked
// slots belong to a reservation and are released through it.
func GuideCanToggle(status models.SlotStatus) bool {
	return status == models.SlotOpen || status == models.SlotClosed
}

func CanTransitionSlot(from, to models.SlotStatus) bool {
	for _, s := range slotTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var reservationTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.ReservationPending:   {models.ReservationAccepted, models.ReservationCancelled},
	models.ReservationAccepted:  {models.ReservationCompleted, models.ReservationCancelled, models.ReservationRefunded},
	models.ReservationCancelled: {models.ReservationRefunded},
	models.ReservationCompleted: {models.ReservationRefunded},
}

func CanTransitionReservation(from, to models.ReservationStatus) bool {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SlotStatusFor returns the slot status implied by a reservation moving to
// status, and false when the slot is left untouched.
func SlotStatusFor(status models.ReservationStatus) (models.SlotStatus, bool) {
	switch status {
	case models.ReservationAccepted:
		return models.SlotBooked, true
	case models.ReservationCancelled:
		return models.SlotOpen, true
	}
	return "", false
}
