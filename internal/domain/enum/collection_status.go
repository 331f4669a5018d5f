package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CollectionStatus tracks whether the agency has collected its own invoice
// for a booking. Bookings of risk-flagged clients enter a payment batch only
// once collected.
type CollectionStatus int

const (
	CollectionStatusNotInvoiced CollectionStatus = 0
	CollectionStatusInvoiced    CollectionStatus = 1
	CollectionStatusCollected   CollectionStatus = 2
)

func (s CollectionStatus) String() string {
	names := [...]string{"NON_FATTURATA", "FATTURATA", "INCASSATA"}
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

func (s CollectionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CollectionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CollectionStatus(i)
		return nil
	}
	switch str {
	case "NON_FATTURATA":
		*s = CollectionStatusNotInvoiced
	case "FATTURATA":
		*s = CollectionStatusInvoiced
	case "INCASSATA":
		*s = CollectionStatusCollected
	}
	return nil
}

func (s CollectionStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CollectionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CollectionStatusNotInvoiced
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CollectionStatus(v)
	case int:
		*s = CollectionStatus(v)
	}
	return nil
}
