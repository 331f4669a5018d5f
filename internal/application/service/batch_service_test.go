package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBatchFixture() (*BatchService, *fakeBookingRepo, *fakeBatchRepo, *fakeReceiptRepo, *fakeMailer, *fakeStore) {
	bookingRepo := &fakeBookingRepo{}
	batchRepo := &fakeBatchRepo{}
	receiptRepo := newFakeReceiptRepo()
	mailer := &fakeMailer{}
	store := newFakeStore()
	svc := NewBatchService(batchRepo, bookingRepo, receiptRepo, mailer,
		stubRenderer{}, store, 7*24*time.Hour, nil)
	return svc, bookingRepo, batchRepo, receiptRepo, mailer, store
}

func TestGenerateBatchIssuesOneReceiptPerPerformer(t *testing.T) {
	svc, bookingRepo, _, _, mailer, store := newBatchFixture()

	client := entity.Client{ID: uuid.New(), Name: "Teatro Comunale"}
	anna := testPerformer("Anna", "Bianchi")
	marco := testPerformer("Marco", "Rossi")

	// Anna plays twice in the window, Marco once. One receipt each.
	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.February, 18), "Teatro Comunale", testLine(anna, "100.00")),
		testBooking(client, date(2025, time.February, 22), "Teatro Comunale", testLine(anna, "80.00"), testLine(marco, "120.00")),
	}

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.NoError(t, err)

	require.Len(t, report.Receipts, 2)
	assert.Equal(t, 2, report.Batch.ReceiptCount)
	assert.Equal(t, "BP-2025-1", report.Batch.Code)
	assert.Equal(t, entity.PeriodSecondHalf, report.Batch.Period)

	// Sorted by name: Anna first, with both bookings aggregated.
	annaReceipt := report.Receipts[0]
	assert.Equal(t, anna.ID, annaReceipt.PerformerID)
	assert.Len(t, annaReceipt.Lines, 2)
	assert.True(t, annaReceipt.NetOriginal.Equal(d("180.00")), "net %s", annaReceipt.NetOriginal)
	assert.True(t, annaReceipt.TotalPayable.Equal(d("180.00")))
	assert.Equal(t, enum.ReceiptStatusGenerata, annaReceipt.Status)
	assert.Equal(t, fmt.Sprintf("PO-2025-%s-001", anna.TaxCode[:6]), annaReceipt.Code)
	assert.NotEmpty(t, annaReceipt.SignatureToken)

	// Batch total covers both receipts.
	assert.True(t, report.Batch.TotalAmount.Equal(d("300.00")), "total %s", report.Batch.TotalAmount)

	// Side effects ran for both receipts.
	assert.Len(t, mailer.requests, 2)
	assert.Len(t, store.files, 2)
	for _, del := range report.Delivery {
		assert.True(t, del.PDFGenerated)
		assert.True(t, del.EmailSent)
	}
}

func TestGenerateBatchExcludesIncompleteProfiles(t *testing.T) {
	svc, bookingRepo, _, _, _, _ := newBatchFixture()

	client := entity.Client{ID: uuid.New(), Name: "Club Indigo"}

	var bookings []entity.Booking
	for i := 0; i < 10; i++ {
		p := testPerformer("Artista", fmt.Sprintf("Numero%02d", i))
		if i < 2 {
			p.IBAN = ""
		}
		bookings = append(bookings, testBooking(client, date(2025, time.February, 20), "Club Indigo", testLine(p, "100.00")))
	}
	bookingRepo.bookings = bookings

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.NoError(t, err)

	assert.Len(t, report.Receipts, 8)
	require.Len(t, report.Excluded, 2)
	for _, ex := range report.Excluded {
		assert.Equal(t, "incomplete fiscal profile", ex.Reason)
		assert.Contains(t, ex.MissingFields, "iban")
	}
}

func TestGenerateBatchHoldsBackRiskyUncollectedBookings(t *testing.T) {
	svc, bookingRepo, _, _, _, _ := newBatchFixture()

	risky := entity.Client{ID: uuid.New(), Name: "Organizzatore Moroso", ReceivablesRisk: true}
	safe := entity.Client{ID: uuid.New(), Name: "Teatro Stabile"}

	anna := testPerformer("Anna", "Bianchi")
	marco := testPerformer("Marco", "Rossi")

	collected := testBooking(risky, date(2025, time.February, 17), "Sala Grande", testLine(anna, "90.00"))
	collected.CollectionStatus = enum.CollectionStatusCollected

	bookingRepo.bookings = []entity.Booking{
		collected,
		testBooking(risky, date(2025, time.February, 19), "Sala Piccola", testLine(marco, "70.00")),
		testBooking(safe, date(2025, time.February, 21), "Teatro Stabile", testLine(anna, "60.00")),
	}

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.NoError(t, err)

	// Anna is paid for the collected risky booking plus the safe one; Marco's
	// only work sits behind an uncollected risky client.
	require.Len(t, report.Receipts, 1)
	assert.Equal(t, anna.ID, report.Receipts[0].PerformerID)
	assert.True(t, report.Receipts[0].NetOriginal.Equal(d("150.00")))

	require.Len(t, report.Excluded, 1)
	assert.Equal(t, marco.ID, report.Excluded[0].PerformerID)
	assert.Equal(t, "client receivables at risk, awaiting collection", report.Excluded[0].Reason)
}

func TestGenerateBatchSkipsNonOccasionalPerformers(t *testing.T) {
	svc, bookingRepo, _, _, _, _ := newBatchFixture()

	client := entity.Client{ID: uuid.New(), Name: "Teatro"}
	occasional := testPerformer("Anna", "Bianchi")
	employee := testPerformer("Luca", "Verdi")
	employee.ContractType = enum.ContractTypeEmployee

	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.February, 20), "Teatro",
			testLine(occasional, "100.00"), testLine(employee, "100.00")),
	}

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.NoError(t, err)

	require.Len(t, report.Receipts, 1)
	assert.Equal(t, occasional.ID, report.Receipts[0].PerformerID)
}

func TestGenerateBatchFailsWithNoEligibleWork(t *testing.T) {
	svc, _, _, _, _, _ := newBatchFixture()

	_, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.Error(t, err)
}

func TestGenerateBatchSequenceNumbersArePerPerformerYear(t *testing.T) {
	svc, bookingRepo, _, receiptRepo, _, _ := newBatchFixture()

	client := entity.Client{ID: uuid.New(), Name: "Teatro"}
	anna := testPerformer("Anna", "Bianchi")

	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.February, 18), "Teatro", testLine(anna, "100.00")),
	}
	_, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{Reference: date(2025, time.March, 3)})
	require.NoError(t, err)

	// Second run over the next window issues her second receipt of the year.
	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.March, 10), "Teatro", testLine(anna, "100.00")),
	}
	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{Reference: date(2025, time.March, 20)})
	require.NoError(t, err)

	require.Len(t, report.Receipts, 1)
	assert.Equal(t, 2, report.Receipts[0].SequenceNumber)
	assert.Equal(t, fmt.Sprintf("PO-2025-%s-002", anna.TaxCode[:6]), report.Receipts[0].Code)
	assert.Len(t, receiptRepo.receipts, 2)
}

func TestGenerateBatchDeliveryFailuresDoNotFailTheRun(t *testing.T) {
	svc, bookingRepo, _, _, mailer, _ := newBatchFixture()
	mailer.failSend = true

	client := entity.Client{ID: uuid.New(), Name: "Teatro"}
	anna := testPerformer("Anna", "Bianchi")
	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.February, 18), "Teatro", testLine(anna, "100.00")),
	}

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.NoError(t, err)

	require.Len(t, report.Receipts, 1)
	require.Len(t, report.Delivery, 1)
	assert.True(t, report.Delivery[0].PDFGenerated)
	assert.False(t, report.Delivery[0].EmailSent)
	assert.NotEmpty(t, report.Delivery[0].Error)
}

func TestGenerateBatchReceiptFailureKeepsTheRest(t *testing.T) {
	svc, bookingRepo, _, receiptRepo, _, _ := newBatchFixture()

	client := entity.Client{ID: uuid.New(), Name: "Teatro"}
	anna := testPerformer("Anna", "Bianchi")
	marco := testPerformer("Marco", "Rossi")
	receiptRepo.failFor[marco.ID] = errors.New("deadlock detected")

	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.February, 18), "Teatro",
			testLine(anna, "100.00"), testLine(marco, "50.00")),
	}

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference: date(2025, time.March, 3),
	})
	require.NoError(t, err)

	require.Len(t, report.Receipts, 1)
	assert.Equal(t, anna.ID, report.Receipts[0].PerformerID)
	require.Len(t, report.Excluded, 1)
	assert.Contains(t, report.Excluded[0].Reason, "receipt creation failed")
	assert.Equal(t, 1, report.Batch.ReceiptCount)
}

func TestGenerateBatchAllowlistRestrictsRun(t *testing.T) {
	svc, bookingRepo, _, _, _, _ := newBatchFixture()

	client := entity.Client{ID: uuid.New(), Name: "Teatro"}
	anna := testPerformer("Anna", "Bianchi")
	marco := testPerformer("Marco", "Rossi")

	bookingRepo.bookings = []entity.Booking{
		testBooking(client, date(2025, time.February, 18), "Teatro",
			testLine(anna, "100.00"), testLine(marco, "50.00")),
	}

	report, err := svc.GenerateBatch(context.Background(), &GenerateBatchInput{
		Reference:    date(2025, time.March, 3),
		PerformerIDs: []uuid.UUID{marco.ID},
	})
	require.NoError(t, err)

	require.Len(t, report.Receipts, 1)
	assert.Equal(t, marco.ID, report.Receipts[0].PerformerID)
	assert.Empty(t, report.Excluded)
}

func TestReceiptNumberingConcurrent(t *testing.T) {
	repo := newFakeReceiptRepo()
	performer := testPerformer("Anna", "Bianchi")

	const n = 20
	var wg sync.WaitGroup
	seqs := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := &entity.Receipt{PerformerID: performer.ID, Year: 2025}
			err := repo.CreateNumbered(context.Background(), r, func(seq int) {
				r.SequenceNumber = seq
			})
			assert.NoError(t, err)
			seqs <- r.SequenceNumber
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int]bool, n)
	for seq := range seqs {
		assert.False(t, seen[seq], "duplicate sequence %d", seq)
		seen[seq] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}
