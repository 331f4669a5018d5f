package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ReceiptStatus represents the state of an occasional-performance receipt.
//
// Forward path: GENERATA -> (SOLLECITATA) -> FIRMATA -> PAGABILE ->
// (IN_DISTINTA) -> PAGATA. SCADUTA and ANNULLATA are terminal failure states;
// a receipt is never deleted, cancellation is a status.
type ReceiptStatus int

const (
	ReceiptStatusGenerata    ReceiptStatus = 0
	ReceiptStatusSollecitata ReceiptStatus = 1
	ReceiptStatusFirmata     ReceiptStatus = 2
	ReceiptStatusPagabile    ReceiptStatus = 3
	ReceiptStatusInDistinta  ReceiptStatus = 4
	ReceiptStatusPagata      ReceiptStatus = 5
	ReceiptStatusScaduta     ReceiptStatus = 6
	ReceiptStatusAnnullata   ReceiptStatus = 7
)

func (s ReceiptStatus) String() string {
	names := [...]string{
		"GENERATA", "SOLLECITATA", "FIRMATA", "PAGABILE",
		"IN_DISTINTA", "PAGATA", "SCADUTA", "ANNULLATA",
	}
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

// IsSignable reports whether the receipt may still accept a signature.
func (s ReceiptStatus) IsSignable() bool {
	return s == ReceiptStatusGenerata || s == ReceiptStatusSollecitata
}

// IsSigned reports whether a signature has been completed.
func (s ReceiptStatus) IsSigned() bool {
	return s == ReceiptStatusFirmata || s == ReceiptStatusPagabile ||
		s == ReceiptStatusInDistinta || s == ReceiptStatusPagata
}

func (s ReceiptStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReceiptStatus(i)
		return nil
	}
	switch str {
	case "GENERATA":
		*s = ReceiptStatusGenerata
	case "SOLLECITATA":
		*s = ReceiptStatusSollecitata
	case "FIRMATA":
		*s = ReceiptStatusFirmata
	case "PAGABILE":
		*s = ReceiptStatusPagabile
	case "IN_DISTINTA":
		*s = ReceiptStatusInDistinta
	case "PAGATA":
		*s = ReceiptStatusPagata
	case "SCADUTA":
		*s = ReceiptStatusScaduta
	case "ANNULLATA":
		*s = ReceiptStatusAnnullata
	}
	return nil
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceiptStatusGenerata
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReceiptStatus(v)
	case int:
		*s = ReceiptStatus(v)
	}
	return nil
}
