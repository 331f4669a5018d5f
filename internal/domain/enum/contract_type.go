package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ContractType represents how a performer is engaged by the agency.
// Only occasional self-employed performers go through the payment batch engine.
type ContractType int

const (
	ContractTypeEmployee     ContractType = 0
	ContractTypeOccasional   ContractType = 1
	ContractTypeProfessional ContractType = 2
)

func (t ContractType) String() string {
	names := [...]string{"DIPENDENTE", "OCCASIONALE", "PARTITA_IVA"}
	if t < 0 || int(t) >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

func (t ContractType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ContractType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ContractType(i)
		return nil
	}
	switch str {
	case "DIPENDENTE":
		*t = ContractTypeEmployee
	case "OCCASIONALE":
		*t = ContractTypeOccasional
	case "PARTITA_IVA":
		*t = ContractTypeProfessional
	}
	return nil
}

func (t ContractType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ContractType) Scan(value interface{}) error {
	if value == nil {
		*t = ContractTypeEmployee
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = ContractType(v)
	case int:
		*t = ContractType(v)
	}
	return nil
}
