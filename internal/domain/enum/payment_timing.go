package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentTiming is the performer-chosen payout schedule. ANTICIPATO trades a
// fixed fee for an early wire and is offered only below the configured net
// ceiling.
type PaymentTiming int

const (
	PaymentTimingStandard   PaymentTiming = 0
	PaymentTimingAnticipato PaymentTiming = 1
)

func (t PaymentTiming) String() string {
	names := [...]string{"STANDARD", "ANTICIPATO"}
	if t < 0 || int(t) >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

func (t PaymentTiming) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *PaymentTiming) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = PaymentTiming(i)
		return nil
	}
	switch str {
	case "STANDARD":
		*t = PaymentTimingStandard
	case "ANTICIPATO":
		*t = PaymentTimingAnticipato
	}
	return nil
}

func (t PaymentTiming) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *PaymentTiming) Scan(value interface{}) error {
	if value == nil {
		*t = PaymentTimingStandard
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = PaymentTiming(v)
	case int:
		*t = PaymentTiming(v)
	}
	return nil
}
