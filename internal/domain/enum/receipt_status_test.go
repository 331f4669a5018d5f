package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptStatusStringOutOfRange(t *testing.T) {
	// A corrupted column value scanned into the enum must not panic.
	assert.Equal(t, "UNKNOWN", ReceiptStatus(99).String())
	assert.Equal(t, "UNKNOWN", ReceiptStatus(-1).String())
	assert.Equal(t, "PAGABILE", ReceiptStatusPagabile.String())
}

func TestReceiptStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(ReceiptStatusSollecitata)
	require.NoError(t, err)
	assert.Equal(t, `"SOLLECITATA"`, string(data))

	var s ReceiptStatus
	require.NoError(t, json.Unmarshal([]byte(`"ANNULLATA"`), &s))
	assert.Equal(t, ReceiptStatusAnnullata, s)
}

func TestEnumStringsOutOfRange(t *testing.T) {
	assert.Equal(t, "UNKNOWN", PaymentTiming(9).String())
	assert.Equal(t, "UNKNOWN", BookingStatus(9).String())
	assert.Equal(t, "UNKNOWN", CollectionStatus(9).String())
	assert.Equal(t, "UNKNOWN", ContractType(9).String())
	assert.Equal(t, "UNKNOWN", BatchStatus(9).String())
}
