package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/aura-reserve/backend/internal/models"
)

var csvHeader = []string{
	"reservation_id", "resource_id", "resource_name", "user_id", "start_time", "end_time",
	"status", "guest_last_name", "guest_first_name", "guest_contact", "notes", "capacity",
}

// WriteCSV renders reservations grouped under their resources. Times are RFC3339 UTC.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		r := row.Reservation
		userID := ""
		if r.UserID != nil {
			userID = r.UserID.String()
		}
		capacity := ""
		if row.Resource.Capacity != nil {
			capacity = strconv.Itoa(*row.Resource.Capacity)
		}
		record := []string{
			r.ID.String(),
			r.ResourceID.String(),
			row.Resource.Name,
			userID,
			r.StartTime.UTC().Format(time.RFC3339),
			r.EndTime.UTC().Format(time.RFC3339),
			string(r.Status),
			deref(r.GuestLastName),
			deref(r.GuestFirstName),
			deref(r.GuestContact),
			deref(r.Notes),
			capacity,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row pairs a reservation with the resource it books.
type Row struct {
	Resource    models.Resource
	Reservation models.Reservation
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
