package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/application/service"
	"github.com/scenart/agency-api/internal/domain/entity"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/internal/domain/repository"
	"github.com/scenart/agency-api/pkg/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenReceiptRepo is a minimal in-memory repository backing the signature
// endpoints under test. Only the token paths are exercised.
type tokenReceiptRepo struct {
	mu       sync.Mutex
	receipts map[string]*entity.Receipt // keyed by signature token
}

func newTokenReceiptRepo() *tokenReceiptRepo {
	return &tokenReceiptRepo{receipts: make(map[string]*entity.Receipt)}
}

func (f *tokenReceiptRepo) CreateNumbered(ctx context.Context, receipt *entity.Receipt, numbered func(seq int)) error {
	return nil
}

func (f *tokenReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	return nil, nil
}

func (f *tokenReceiptRepo) GetByToken(ctx context.Context, token string) (*entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[token]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

func (f *tokenReceiptRepo) List(ctx context.Context, params *repository.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	return nil, 0, nil
}

func (f *tokenReceiptRepo) Update(ctx context.Context, receipt *entity.Receipt) error {
	return nil
}

func (f *tokenReceiptRepo) MutateByToken(ctx context.Context, token string, mutate func(r *entity.Receipt) error) (*entity.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[token]
	if !ok {
		return nil, nil
	}
	clone := *r
	if err := mutate(&clone); err != nil {
		return nil, err
	}
	*r = clone
	out := clone
	return &out, nil
}

func (f *tokenReceiptRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type discardStore struct{}

func (discardStore) Save(relPath string, data []byte) error { return nil }
func (discardStore) Read(relPath string) ([]byte, error)    { return nil, nil }

func signRouter(repo *tokenReceiptRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rules := service.AmountRules{
		MaxReimbursement:  decimal.RequireFromString("50.00"),
		AdvanceFee:        decimal.RequireFromString("5.00"),
		AdvanceNetCeiling: decimal.RequireFromString("200.00"),
	}
	svc := service.NewSignatureService(repo, pdf.NullRenderer{}, discardStore{}, rules, nil)
	h := NewSignatureHandler(svc, 0)

	router := gin.New()
	router.GET("/sign/:token", h.Review)
	router.POST("/sign/:token", h.Sign)
	return router
}

func seedSignable(repo *tokenReceiptRepo, token string) {
	net := decimal.RequireFromString("150.00")
	gross := decimal.RequireFromString("187.50")
	repo.receipts[token] = &entity.Receipt{
		ID:                  uuid.New(),
		PerformerID:         uuid.New(),
		Year:                2025,
		SequenceNumber:      1,
		Code:                "PO-2025-RSSMRA-001",
		GrossOriginal:       gross,
		NetOriginal:         net,
		WithholdingOriginal: gross.Sub(net),
		GrossAdjusted:       gross,
		NetAdjusted:         net,
		WithholdingAdjusted: gross.Sub(net),
		TotalPayable:        net,
		Status:              enum.ReceiptStatusGenerata,
		IssuedAt:            time.Now(),
		SignatureToken:      token,
		TokenExpiresAt:      time.Now().Add(7 * 24 * time.Hour),
		Performer: entity.Performer{
			FirstName: "Anna",
			LastName:  "Bianchi",
			TaxCode:   "RSSMRA80A01H501U",
		},
	}
}

func TestSignatureReviewEndpoint(t *testing.T) {
	repo := newTokenReceiptRepo()
	seedSignable(repo, "good-token")
	router := signRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sign/good-token", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Code         string `json:"code"`
			TotalPayable string `json:"total_payable"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "PO-2025-RSSMRA-001", body.Data.Code)
	assert.Equal(t, "150", body.Data.TotalPayable)
}

func TestSignatureReviewUnknownToken(t *testing.T) {
	router := signRouter(newTokenReceiptRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sign/no-such-token", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignatureSignEndpoint(t *testing.T) {
	repo := newTokenReceiptRepo()
	seedSignable(repo, "good-token")
	router := signRouter(repo)

	payload := map[string]any{
		"first_name":     "Anna",
		"last_name":      "Bianchi",
		"payment_timing": "ANTICIPATO",
		"accepted":       true,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sign/good-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, enum.ReceiptStatusPagabile, repo.receipts["good-token"].Status)
	assert.True(t, repo.receipts["good-token"].TotalPayable.Equal(decimal.RequireFromString("145.00")))

	// A second submission for the same token is a conflict and leaves the
	// stored amounts untouched.
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/sign/good-token", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusConflict, w2.Code)
	assert.True(t, repo.receipts["good-token"].TotalPayable.Equal(decimal.RequireFromString("145.00")))
}

func TestSignatureSignWithoutAcceptance(t *testing.T) {
	repo := newTokenReceiptRepo()
	seedSignable(repo, "good-token")
	router := signRouter(repo)

	body := []byte(`{"first_name": "Anna", "last_name": "Bianchi"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sign/good-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, enum.ReceiptStatusGenerata, repo.receipts["good-token"].Status)
}

func TestSignatureSignMissingFields(t *testing.T) {
	repo := newTokenReceiptRepo()
	seedSignable(repo, "good-token")
	router := signRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sign/good-token", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, enum.ReceiptStatusGenerata, repo.receipts["good-token"].Status)
}
