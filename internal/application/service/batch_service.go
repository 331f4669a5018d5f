package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/scenart/agency-api/pkg/pagination"
	"github.com/scenart/agency-api/pkg/pdf"
	"github.com/scenart/agency-api/pkg/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mailer sends the signature workflow emails. Satisfied by
// email.EmailService.
type Mailer interface {
	SendSignatureRequest(toEmail, performerName, receiptCode, totalPayable, token string, pdfData []byte) error
	SendSignatureReminder(toEmail, performerName, receiptCode, token string) error
}

// BatchService runs the payment batch engine: it resolves the payment
// window, filters eligible work, aggregates it per performer and issues one
// numbered receipt each.
type BatchService struct {
	batchRepo   repository.PaymentBatchRepository
	bookingRepo repository.BookingRepository
	receiptRepo repository.ReceiptRepository
	mailer      Mailer
	renderer    pdf.Renderer
	store       storage.Store
	tokenTTL    time.Duration
	logger      *zap.Logger
}

// NewBatchService creates a new batch service
func NewBatchService(
	batchRepo repository.PaymentBatchRepository,
	bookingRepo repository.BookingRepository,
	receiptRepo repository.ReceiptRepository,
	mailer Mailer,
	renderer pdf.Renderer,
	store storage.Store,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		batchRepo:   batchRepo,
		bookingRepo: bookingRepo,
		receiptRepo: receiptRepo,
		mailer:      mailer,
		renderer:    renderer,
		store:       store,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// GenerateBatchInput controls one batch run.
type GenerateBatchInput struct {
	// Reference is the run date; zero means now.
	Reference time.Time
	// Forced opens the lookback window instead of the half-month cadence.
	Forced bool
	// PerformerIDs restricts the run to the listed performers. Empty means
	// everyone, which is the normal cadence; a restricted forced run is how
	// a previously failed performer is picked up.
	PerformerIDs []uuid.UUID
}

// ExcludedPerformer explains why a performer with completed work received no
// receipt in this run.
type ExcludedPerformer struct {
	PerformerID   uuid.UUID `json:"performer_id"`
	Name          string    `json:"name"`
	Reason        string    `json:"reason"`
	MissingFields []string  `json:"missing_fields,omitempty"`
}

// DeliveryResult reports the best-effort side effects for one receipt.
type DeliveryResult struct {
	ReceiptCode  string `json:"receipt_code"`
	PDFGenerated bool   `json:"pdf_generated"`
	EmailSent    bool   `json:"email_sent"`
	Error        string `json:"error,omitempty"`
}

// BatchReport is the outcome of one generation run.
type BatchReport struct {
	Batch    *entity.PaymentBatch `json:"batch"`
	Receipts []entity.Receipt     `json:"receipts"`
	Excluded []ExcludedPerformer  `json:"excluded,omitempty"`
	Delivery []DeliveryResult     `json:"delivery,omitempty"`
}

// performerWork is the per-performer aggregation of eligible lines.
type performerWork struct {
	performer *entity.Performer
	lines     []entity.ReceiptLine
	gross     decimal.Decimal
	net       decimal.Decimal
	withhold  decimal.Decimal
}

// GenerateBatch runs the engine once. Receipt creation is per-performer and
// durable; PDF rendering, document storage and email delivery happen after
// the receipts exist and never fail the run.
func (s *BatchService) GenerateBatch(ctx context.Context, input *GenerateBatchInput) (*BatchReport, error) {
	ref := input.Reference
	if ref.IsZero() {
		ref = time.Now()
	}
	win := ResolveWindow(ref, input.Forced)

	bookings, err := s.bookingRepo.ListCompletedInWindow(ctx, win.Start, win.End)
	if err != nil {
		return nil, err
	}

	var allow map[uuid.UUID]bool
	if len(input.PerformerIDs) > 0 {
		allow = make(map[uuid.UUID]bool, len(input.PerformerIDs))
		for _, id := range input.PerformerIDs {
			allow[id] = true
		}
	}

	work, excluded := s.aggregate(bookings, allow)
	if len(work) == 0 {
		return nil, apperror.NewUnprocessableError("No eligible performers in the payment window")
	}

	batch := &entity.PaymentBatch{
		Year:        win.Year,
		Month:       win.Month,
		Period:      win.Period,
		WindowStart: win.Start,
		WindowEnd:   win.End,
		GeneratedAt: time.Now(),
		Status:      enum.BatchStatusGenerato,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	receipts := make([]entity.Receipt, 0, len(work))
	total := decimal.Zero
	for _, w := range work {
		receipt, err := s.issueReceipt(ctx, batch, win, w)
		if err != nil {
			// The batch keeps the receipts already issued; the failed
			// performer surfaces in the exclusion report and can be
			// picked up by a forced run.
			s.logger.Error("failed to issue receipt",
				zap.String("performer_id", w.performer.ID.String()),
				zap.Error(err))
			excluded = append(excluded, ExcludedPerformer{
				PerformerID: w.performer.ID,
				Name:        w.performer.FullName(),
				Reason:      "receipt creation failed: " + err.Error(),
			})
			continue
		}
		receipts = append(receipts, *receipt)
		total = total.Add(receipt.TotalPayable)
	}

	if err := s.batchRepo.UpdateAggregates(ctx, batch.ID, len(receipts), total); err != nil {
		return nil, err
	}
	batch.ReceiptCount = len(receipts)
	batch.TotalAmount = total

	delivery := s.deliver(ctx, win, receipts)

	return &BatchReport{
		Batch:    batch,
		Receipts: receipts,
		Excluded: excluded,
		Delivery: delivery,
	}, nil
}

// aggregate filters bookings through the eligibility rules and groups the
// surviving compensation lines per performer. A non-nil allowlist restricts
// the run to those performers.
func (s *BatchService) aggregate(bookings []entity.Booking, allow map[uuid.UUID]bool) ([]*performerWork, []ExcludedPerformer) {
	byPerformer := make(map[uuid.UUID]*performerWork)
	heldBack := make(map[uuid.UUID]*entity.Performer)

	for i := range bookings {
		booking := &bookings[i]
		if !booking.PayableAhead() {
			// Risk-flagged client not yet collected: the booking waits, it
			// is not lost. Remember who was held back for the report.
			for j := range booking.Lines {
				line := &booking.Lines[j]
				if allow != nil && !allow[line.PerformerID] {
					continue
				}
				if line.Performer.ContractType == enum.ContractTypeOccasional {
					heldBack[line.PerformerID] = &line.Performer
				}
			}
			continue
		}

		for j := range booking.Lines {
			line := &booking.Lines[j]
			if allow != nil && !allow[line.PerformerID] {
				continue
			}
			if line.Performer.ContractType != enum.ContractTypeOccasional {
				continue
			}
			w, ok := byPerformer[line.PerformerID]
			if !ok {
				w = &performerWork{
					performer: &line.Performer,
					gross:     decimal.Zero,
					net:       decimal.Zero,
					withhold:  decimal.Zero,
				}
				byPerformer[line.PerformerID] = w
			}
			w.lines = append(w.lines, entity.ReceiptLine{
				BookingID:   booking.ID,
				Venue:       booking.Venue,
				Date:        booking.Date,
				Gross:       line.Gross,
				Net:         line.Net,
				Withholding: line.Withholding,
			})
			w.gross = w.gross.Add(line.Gross)
			w.net = w.net.Add(line.Net)
			w.withhold = w.withhold.Add(line.Withholding)
		}
	}

	var excluded []ExcludedPerformer
	var work []*performerWork
	for id, w := range byPerformer {
		if missing := w.performer.MissingProfileFields(); len(missing) > 0 {
			excluded = append(excluded, ExcludedPerformer{
				PerformerID:   id,
				Name:          w.performer.FullName(),
				Reason:        "incomplete fiscal profile",
				MissingFields: missing,
			})
			continue
		}
		work = append(work, w)
	}
	for id, p := range heldBack {
		if _, hasWork := byPerformer[id]; hasWork {
			continue
		}
		excluded = append(excluded, ExcludedPerformer{
			PerformerID: id,
			Name:        p.FullName(),
			Reason:      "client receivables at risk, awaiting collection",
		})
	}

	sort.Slice(work, func(i, j int) bool {
		return work[i].performer.FullName() < work[j].performer.FullName()
	})
	sort.Slice(excluded, func(i, j int) bool {
		return excluded[i].Name < excluded[j].Name
	})
	return work, excluded
}

// issueReceipt creates one numbered receipt for a performer's aggregated
// work. The progressive number and the insert commit together.
func (s *BatchService) issueReceipt(ctx context.Context, batch *entity.PaymentBatch, win Window, w *performerWork) (*entity.Receipt, error) {
	token, err := generateSignatureToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	receipt := &entity.Receipt{
		BatchID:             batch.ID,
		PerformerID:         w.performer.ID,
		Year:                batch.Year,
		Lines:               w.lines,
		Description:         fmt.Sprintf("Prestazioni occasionali dal %s al %s", win.Start.Format("02/01/2006"), win.End.Format("02/01/2006")),
		GrossOriginal:       w.gross,
		NetOriginal:         w.net,
		WithholdingOriginal: w.withhold,
		GrossAdjusted:       w.gross,
		NetAdjusted:         w.net,
		WithholdingAdjusted: w.withhold,
		Reimbursement:       decimal.Zero,
		AdvanceFee:          decimal.Zero,
		TotalPayable:        w.net,
		Status:              enum.ReceiptStatusGenerata,
		IssuedAt:            now,
		SignatureToken:      token,
		TokenExpiresAt:      now.Add(s.tokenTTL),
		Performer:           *w.performer,
	}

	tax6 := w.performer.TaxCode
	if len(tax6) > 6 {
		tax6 = tax6[:6]
	}
	err = s.receiptRepo.CreateNumbered(ctx, receipt, func(seq int) {
		receipt.SequenceNumber = seq
		receipt.Code = fmt.Sprintf("PO-%d-%s-%03d", batch.Year, tax6, seq)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// deliver runs the post-creation side effects for each receipt: render the
// PDF, store it, email the signature link. Failures are reported, never
// fatal.
func (s *BatchService) deliver(ctx context.Context, win Window, receipts []entity.Receipt) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(receipts))
	for i := range receipts {
		receipt := &receipts[i]
		result := DeliveryResult{ReceiptCode: receipt.Code}

		var pdfData []byte
		pdfData, err := s.renderReceiptPDF(ctx, receipt)
		if err != nil {
			s.logger.Warn("receipt pdf rendering failed",
				zap.String("receipt", receipt.Code), zap.Error(err))
			result.Error = err.Error()
		} else {
			relPath := storage.ReceiptRelPath(
				receipt.Performer.FullName(), receipt.Performer.TaxCode,
				win.YearMonth(), receipt.Code)
			if err := s.store.Save(relPath, pdfData); err != nil {
				s.logger.Warn("receipt pdf storage failed",
					zap.String("receipt", receipt.Code), zap.Error(err))
				result.Error = err.Error()
			} else {
				receipt.DocumentPath = &relPath
				if err := s.receiptRepo.Update(ctx, receipt); err != nil {
					s.logger.Warn("failed to record document path",
						zap.String("receipt", receipt.Code), zap.Error(err))
				}
				result.PDFGenerated = true
			}
		}

		err = s.mailer.SendSignatureRequest(
			receipt.Performer.Email,
			receipt.Performer.FullName(),
			receipt.Code,
			receipt.TotalPayable.StringFixed(2),
			receipt.SignatureToken,
			pdfData,
		)
		if err != nil {
			s.logger.Warn("signature request email failed",
				zap.String("receipt", receipt.Code), zap.Error(err))
			if result.Error == "" {
				result.Error = err.Error()
			}
		} else {
			result.EmailSent = true
		}

		results = append(results, result)
	}
	return results
}

// renderReceiptPDF renders the receipt document.
func (s *BatchService) renderReceiptPDF(ctx context.Context, receipt *entity.Receipt) ([]byte, error) {
	html, err := pdf.RenderReceiptHTML(receiptDocumentData(receipt))
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, html)
}

// receiptDocumentData maps a receipt to its printable representation.
func receiptDocumentData(receipt *entity.Receipt) *pdf.ReceiptData {
	data := &pdf.ReceiptData{
		Code:          receipt.Code,
		IssuedAt:      receipt.IssuedAt.Format("02/01/2006"),
		PerformerName: receipt.Performer.FullName(),
		TaxCode:       receipt.Performer.TaxCode,
		Address:       receipt.Performer.Address,
		PostalCode:    receipt.Performer.PostalCode,
		City:          receipt.Performer.City,
		Province:      receipt.Performer.Province,
		IBAN:          receipt.Performer.IBAN,
		Gross:         receipt.GrossAdjusted.StringFixed(2),
		Withholding:   receipt.WithholdingAdjusted.StringFixed(2),
		Net:           receipt.NetAdjusted.StringFixed(2),
		TotalPayable:  receipt.TotalPayable.StringFixed(2),
	}
	if receipt.Reimbursement.IsPositive() {
		data.Reimbursement = receipt.Reimbursement.StringFixed(2)
	}
	if receipt.AdvanceFee.IsPositive() {
		data.AdvanceFee = receipt.AdvanceFee.StringFixed(2)
	}
	if receipt.SignedAt != nil && receipt.SignerFirstName != nil && receipt.SignerLastName != nil {
		data.SignerName = *receipt.SignerFirstName + " " + *receipt.SignerLastName
		data.SignedAt = receipt.SignedAt.Format("02/01/2006 15:04")
		data.PaymentTiming = receipt.PaymentTiming.String()
	}
	for _, line := range receipt.Lines {
		data.Lines = append(data.Lines, pdf.ReceiptLineData{
			Date:        line.Date.Format("02/01/2006"),
			Venue:       line.Venue,
			Gross:       line.Gross.StringFixed(2),
			Withholding: line.Withholding.StringFixed(2),
			Net:         line.Net.StringFixed(2),
		})
	}
	return data
}

// ListBatches returns the generation history, newest first.
func (s *BatchService) ListBatches(ctx context.Context, params *pagination.PaginationParams) ([]entity.PaymentBatch, *pagination.Pagination, error) {
	params.Validate()
	batches, total, err := s.batchRepo.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return batches, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

// GetBatch returns one batch by ID.
func (s *BatchService) GetBatch(ctx context.Context, id uuid.UUID) (*entity.PaymentBatch, error) {
	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}
	return batch, nil
}

// generateSignatureToken produces an unguessable bearer token for the public
// signature link.
func generateSignatureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
