package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BatchStatus represents the status of a payment batch. Batches are created
// in GENERATO state and are never re-opened.
type BatchStatus int

const (
	BatchStatusGenerato BatchStatus = 0
)

func (s BatchStatus) String() string {
	names := [...]string{"GENERATO"}
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

func (s BatchStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BatchStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BatchStatus(i)
		return nil
	}
	if str == "GENERATO" {
		*s = BatchStatusGenerato
	}
	return nil
}

func (s BatchStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BatchStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BatchStatusGenerato
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BatchStatus(v)
	case int:
		*s = BatchStatus(v)
	}
	return nil
}
