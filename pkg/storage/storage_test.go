package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	rel := ReceiptRelPath("Anna Bianchi", "RSSMRA80A01H501U", "2025-02", "PO-2025-RSSMRA-001")
	require.NoError(t, store.Save(rel, []byte("%PDF-1.4 doc")))

	data, err := store.Read(rel)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 doc"), data)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = store.Save("../outside.pdf", []byte("x"))
	require.Error(t, err)

	_, err = store.Read("../../etc/passwd")
	require.Error(t, err)
}

func TestReceiptRelPath(t *testing.T) {
	rel := ReceiptRelPath("Anna Bianchi", "RSSMRA80A01H501U", "2025-02", "PO-2025-RSSMRA-001")
	assert.Equal(t, "ANNA_BIANCHI_RSSMRA80A01H501U/2025-02/Ricevuta_PO-2025-RSSMRA-001.pdf", rel)
}

func TestAttachmentRelPath(t *testing.T) {
	rel := AttachmentRelPath("Anna Bianchi", "RSSMRA80A01H501U", "2025-02", "PO-2025-RSSMRA-001", "scontrino taxi.pdf")
	assert.Equal(t, "ANNA_BIANCHI_RSSMRA80A01H501U/2025-02/Giustificativo_PO-2025-RSSMRA-001_scontrino_taxi.pdf", rel)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Anna_Bianchi", Sanitize("Anna Bianchi"))
	assert.Equal(t, "..file.pdf", Sanitize("../file.pdf"))
	assert.Equal(t, "OBrien", Sanitize("O'Brien"))
}
