package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// In-memory doubles for the repository interfaces, mirroring the database
// semantics the real implementations provide.

type fakeBookingRepo struct {
	bookings []entity.Booking
}

func (f *fakeBookingRepo) ListCompletedInWindow(ctx context.Context, from, to time.Time) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range f.bookings {
		if b.Status != enum.BookingStatusCompleted {
			continue
		}
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakeBatchRepo struct {
	batches []*entity.PaymentBatch
}

func (f *fakeBatchRepo) Create(ctx context.Context, batch *entity.PaymentBatch) error {
	batch.ID = uuid.New()
	var count int
	for _, b := range f.batches {
		if b.Year == batch.Year {
			count++
		}
	}
	batch.Code = fmt.Sprintf("BP-%d-%d", batch.Year, count+1)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.PaymentBatch, error) {
	for _, b := range f.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBatchRepo) UpdateAggregates(ctx context.Context, id uuid.UUID, count int, total decimal.Decimal) error {
	for _, b := range f.batches {
		if b.ID == id {
			b.ReceiptCount = count
			b.TotalAmount = total
			return nil
		}
	}
	return errors.New("batch not found")
}

func (f *fakeBatchRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.PaymentBatch, int64, error) {
	out := make([]entity.PaymentBatch, 0, len(f.batches))
	for _, b := range f.batches {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[uuid.UUID]*entity.Receipt
	counters map[string]int
	failFor  map[uuid.UUID]error // performer ID -> forced CreateNumbered failure
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{
		receipts: make(map[uuid.UUID]*entity.Receipt),
		counters: make(map[string]int),
		failFor:  make(map[uuid.UUID]error),
	}
}

func (f *fakeReceiptRepo) CreateNumbered(ctx context.Context, receipt *entity.Receipt, numbered func(seq int)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[receipt.PerformerID]; err != nil {
		return err
	}
	key := fmt.Sprintf("%s-%d", receipt.PerformerID, receipt.Year)
	f.counters[key]++
	numbered(f.counters[key])
	receipt.ID = uuid.New()
	clone := *receipt
	f.receipts[receipt.ID] = &clone
	return nil
}

func (f *fakeReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[id]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReceiptRepo) GetByToken(ctx context.Context, token string) (*entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.receipts {
		if r.SignatureToken == token {
			clone := *r
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeReceiptRepo) List(ctx context.Context, params *repository.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Receipt
	for _, r := range f.receipts {
		if params.Status != nil && r.Status != *params.Status {
			continue
		}
		if params.BatchID != nil && r.BatchID != *params.BatchID {
			continue
		}
		if params.PerformerID != nil && r.PerformerID != *params.PerformerID {
			continue
		}
		if params.Year != nil && r.Year != *params.Year {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, int64(len(out)), nil
}

func (f *fakeReceiptRepo) Update(ctx context.Context, receipt *entity.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.receipts[receipt.ID]; !ok {
		return errors.New("receipt not found")
	}
	clone := *receipt
	f.receipts[receipt.ID] = &clone
	return nil
}

func (f *fakeReceiptRepo) MutateByToken(ctx context.Context, token string, mutate func(r *entity.Receipt) error) (*entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.receipts {
		if r.SignatureToken == token {
			clone := *r
			if err := mutate(&clone); err != nil {
				return nil, err
			}
			f.receipts[r.ID] = &clone
			result := clone
			return &result, nil
		}
	}
	return nil, nil
}

func (f *fakeReceiptRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.receipts {
		if r.Status.IsSignable() && now.After(r.TokenExpiresAt) {
			r.Status = enum.ReceiptStatusScaduta
			count++
		}
	}
	return count, nil
}

type fakeRemittanceRepo struct {
	receipts    *fakeReceiptRepo
	remittances []*entity.Remittance
}

func (f *fakeRemittanceRepo) CreateWithReceipts(ctx context.Context, remittance *entity.Remittance, receiptIDs []uuid.UUID,
	markPaid bool, lineFor func(r *entity.Receipt) entity.RemittanceLine) error {

	f.receipts.mu.Lock()
	defer f.receipts.mu.Unlock()

	// Validate everything before mutating anything.
	selected := make([]*entity.Receipt, 0, len(receiptIDs))
	for _, id := range receiptIDs {
		r, ok := f.receipts.receipts[id]
		if !ok {
			return repository.ErrReceiptMissing
		}
		if r.Status != enum.ReceiptStatusPagabile {
			return fmt.Errorf("%w: %s is %s", repository.ErrReceiptNotPayable, r.Code, r.Status)
		}
		selected = append(selected, r)
	}

	remittance.ID = uuid.New()
	remittance.Code = fmt.Sprintf("DIST-%d-%d", remittance.Year, len(f.remittances)+1)

	total := decimal.Zero
	now := time.Now()
	for _, r := range selected {
		line := lineFor(r)
		line.RemittanceID = remittance.ID
		remittance.Lines = append(remittance.Lines, line)
		total = total.Add(line.Amount)

		r.RemittanceID = &remittance.ID
		if markPaid {
			r.Status = enum.ReceiptStatusPagata
			r.PaymentDate = &now
		} else {
			r.Status = enum.ReceiptStatusInDistinta
		}
	}
	remittance.LineCount = len(remittance.Lines)
	remittance.TotalAmount = total
	if markPaid {
		remittance.PaidAt = &now
	}

	f.remittances = append(f.remittances, remittance)
	return nil
}

func (f *fakeRemittanceRepo) MarkPaid(ctx context.Context, id uuid.UUID) error {
	f.receipts.mu.Lock()
	defer f.receipts.mu.Unlock()
	now := time.Now()
	for _, rem := range f.remittances {
		if rem.ID != id {
			continue
		}
		for _, r := range f.receipts.receipts {
			if r.RemittanceID != nil && *r.RemittanceID == id && r.Status == enum.ReceiptStatusInDistinta {
				r.Status = enum.ReceiptStatusPagata
				r.PaymentDate = &now
			}
		}
		rem.PaidAt = &now
		return nil
	}
	return errors.New("remittance not found")
}

func (f *fakeRemittanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Remittance, error) {
	for _, rem := range f.remittances {
		if rem.ID == id {
			clone := *rem
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeRemittanceRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Remittance, int64, error) {
	out := make([]entity.Remittance, 0, len(f.remittances))
	for _, rem := range f.remittances {
		out = append(out, *rem)
	}
	return out, int64(len(out)), nil
}

type fakeMailer struct {
	mu        sync.Mutex
	requests  []string // receipt codes
	reminders []string
	failSend  bool
}

func (f *fakeMailer) SendSignatureRequest(toEmail, performerName, receiptCode, totalPayable, token string, pdfData []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("smtp unavailable")
	}
	f.requests = append(f.requests, receiptCode)
	return nil
}

func (f *fakeMailer) SendSignatureReminder(toEmail, performerName, receiptCode, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return errors.New("smtp unavailable")
	}
	f.reminders = append(f.reminders, receiptCode)
	return nil
}

type fakeStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (f *fakeStore) Save(relPath string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[relPath] = data
	return nil
}

func (f *fakeStore) Read(relPath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[relPath]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

type stubRenderer struct {
	fail bool
}

func (r stubRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if r.fail {
		return nil, errors.New("render failed")
	}
	return []byte("%PDF-1.4 stub"), nil
}

func (r stubRenderer) Close() error { return nil }

// Test data builders.

func testPerformer(first, last string) *entity.Performer {
	return &entity.Performer{
		ID:           uuid.New(),
		FirstName:    first,
		LastName:     last,
		TaxCode:      "RSSMRA80A01H501U",
		Address:      "Via Roma 1",
		PostalCode:   "00100",
		City:         "Roma",
		Province:     "RM",
		IBAN:         "IT60X0542811101000000123456",
		Email:        "performer@example.com",
		ContractType: enum.ContractTypeOccasional,
	}
}

func testBooking(client entity.Client, date time.Time, venue string, lines ...entity.CompensationLine) entity.Booking {
	b := entity.Booking{
		ID:               uuid.New(),
		ClientID:         client.ID,
		Date:             date,
		Venue:            venue,
		Status:           enum.BookingStatusCompleted,
		CollectionStatus: enum.CollectionStatusNotInvoiced,
		Client:           client,
		Lines:            lines,
	}
	for i := range b.Lines {
		b.Lines[i].BookingID = b.ID
	}
	return b
}

func testLine(p *entity.Performer, net string) entity.CompensationLine {
	netD := decimal.RequireFromString(net)
	gross := netD.Div(decimal.RequireFromString("0.8")).Round(2)
	return entity.CompensationLine{
		ID:          uuid.New(),
		PerformerID: p.ID,
		Gross:       gross,
		Net:         netD,
		Withholding: gross.Sub(netD),
		Performer:   *p,
	}
}
