package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BookingStatus represents the lifecycle status of a booking (agibilita)
type BookingStatus int

const (
	BookingStatusDraft     BookingStatus = 0
	BookingStatusConfirmed BookingStatus = 1
	BookingStatusCompleted BookingStatus = 2
	BookingStatusCancelled BookingStatus = 3
)

func (s BookingStatus) String() string {
	names := [...]string{"BOZZA", "CONFERMATA", "COMPLETATA", "ANNULLATA"}
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

func (s BookingStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BookingStatus(i)
		return nil
	}
	switch str {
	case "BOZZA":
		*s = BookingStatusDraft
	case "CONFERMATA":
		*s = BookingStatusConfirmed
	case "COMPLETATA":
		*s = BookingStatusCompleted
	case "ANNULLATA":
		*s = BookingStatusCancelled
	}
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BookingStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BookingStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BookingStatus(v)
	case int:
		*s = BookingStatus(v)
	}
	return nil
}
