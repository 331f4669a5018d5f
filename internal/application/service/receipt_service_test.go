package service

import (
	"context"
	"testing"
	"time"

	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceiptFixture() (*ReceiptService, *fakeReceiptRepo, *fakeMailer, *fakeStore) {
	receiptRepo := newFakeReceiptRepo()
	mailer := &fakeMailer{}
	store := newFakeStore()
	svc := NewReceiptService(receiptRepo, mailer, store, 7*24*time.Hour, nil)
	return svc, receiptRepo, mailer, store
}

func TestRemindMarksSollecitataAndRestartsToken(t *testing.T) {
	svc, repo, mailer, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")
	repo.receipts[receipt.ID].TokenExpiresAt = time.Now().Add(time.Hour)

	updated, err := svc.Remind(context.Background(), receipt.ID)
	require.NoError(t, err)

	assert.Equal(t, enum.ReceiptStatusSollecitata, updated.Status)
	assert.True(t, updated.TokenExpiresAt.After(time.Now().Add(6*24*time.Hour)))
	assert.Equal(t, []string{receipt.Code}, mailer.reminders)
}

func TestRemindFailedEmailStillPersistsStatus(t *testing.T) {
	svc, repo, mailer, _ := newReceiptFixture()
	mailer.failSend = true
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")

	updated, err := svc.Remind(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusSollecitata, updated.Status)
	assert.Empty(t, mailer.reminders)
}

func TestRemindSignedReceiptConflicts(t *testing.T) {
	svc, repo, _, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")
	repo.receipts[receipt.ID].Status = enum.ReceiptStatusPagabile

	_, err := svc.Remind(context.Background(), receipt.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
}

func TestCancelUnsignedReceipt(t *testing.T) {
	svc, repo, _, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")

	updated, err := svc.Cancel(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusAnnullata, updated.Status)

	// Cancelling again is a no-op, not an error.
	updated, err = svc.Cancel(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusAnnullata, updated.Status)
}

func TestCancelSignedReceiptConflicts(t *testing.T) {
	svc, repo, _, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")
	repo.receipts[receipt.ID].Status = enum.ReceiptStatusPagata

	_, err := svc.Cancel(context.Background(), receipt.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)
}

func TestExpireOverdueSweepsLapsedTokens(t *testing.T) {
	svc, repo, _, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	marco := testPerformer("Marco", "Rossi")

	lapsed := seedReceipt(repo, anna, "150.00")
	repo.receipts[lapsed.ID].TokenExpiresAt = time.Now().Add(-time.Hour)

	alive := seedReceipt(repo, marco, "100.00")

	signed := seedReceipt(repo, testPerformer("Luca", "Verdi"), "80.00")
	repo.receipts[signed.ID].Status = enum.ReceiptStatusPagabile
	repo.receipts[signed.ID].TokenExpiresAt = time.Now().Add(-time.Hour)

	count, err := svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, enum.ReceiptStatusScaduta, repo.receipts[lapsed.ID].Status)
	assert.Equal(t, enum.ReceiptStatusGenerata, repo.receipts[alive.ID].Status)
	assert.Equal(t, enum.ReceiptStatusPagabile, repo.receipts[signed.ID].Status)
}

func TestDocumentReturnsStoredPDF(t *testing.T) {
	svc, repo, _, store := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")

	relPath := "ANNA_BIANCHI_RSSMRA/2025-02/Ricevuta_" + receipt.Code + ".pdf"
	require.NoError(t, store.Save(relPath, []byte("%PDF-1.4 doc")))
	repo.receipts[receipt.ID].DocumentPath = &relPath

	data, filename, err := svc.Document(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 doc"), data)
	assert.Equal(t, "Ricevuta_"+receipt.Code+".pdf", filename)
}

func TestDocumentMissingIsNotFound(t *testing.T) {
	svc, repo, _, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	receipt := seedReceipt(repo, anna, "150.00")

	_, _, err := svc.Document(context.Background(), receipt.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestListReceiptsFiltersByStatus(t *testing.T) {
	svc, repo, _, _ := newReceiptFixture()
	anna := testPerformer("Anna", "Bianchi")
	marco := testPerformer("Marco", "Rossi")

	seedReceipt(repo, anna, "150.00")
	signed := seedReceipt(repo, marco, "100.00")
	repo.receipts[signed.ID].Status = enum.ReceiptStatusPagabile

	status := enum.ReceiptStatusPagabile
	receipts, page, err := svc.ListReceipts(context.Background(), &ListReceiptsInput{Status: &status})
	require.NoError(t, err)

	require.Len(t, receipts, 1)
	assert.Equal(t, marco.ID, receipts[0].PerformerID)
	assert.Equal(t, int64(1), page.Total)
}
