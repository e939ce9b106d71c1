package services

import "github.com/harentsoaR/doctors-portal/internal/models"

// ComputeAvailability returns catalog with each option's slots reduced to the
// ones not booked for that treatment on date. Slot order is kept, options
// with nothing left are returned with an empty slot list, and bookings for
// any other date are ignored. The inputs are not modified.
func ComputeAvailability(date string, catalog []models.TreatmentOption, bookings []models.Booking) []models.TreatmentOption {
	booked := make(map[string]map[string]struct{})
	for _, b := range bookings {
		if b.AppointmentDate != date {
			continue
		}
		if booked[b.Treatment] == nil {
			booked[b.Treatment] = make(map[string]struct{})
		}
		booked[b.Treatment][b.Slot] = struct{}{}
	}

	out := make([]models.TreatmentOption, len(catalog))
	for i, option := range catalog {
		taken := booked[option.Name]
		remaining := make([]string, 0, len(option.Slots))
		for _, slot := range option.Slots {
			if _, ok := taken[slot]; !ok {
				remaining = append(remaining, slot)
			}
		}
		option.Slots = remaining
		out[i] = option
	}
	return out
}
