package service

import (
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/scenart/agency-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Withholding rate for occasional performances: 20% of gross, so net is 80%
// of gross.
var netRate = decimal.RequireFromString("0.8")

// AmountRules are the configured bounds applied at signature time.
type AmountRules struct {
	MaxReimbursement  decimal.Decimal
	AdvanceFee        decimal.Decimal
	AdvanceNetCeiling decimal.Decimal
}

// AmountInput is what the performer declared on the signature form.
type AmountInput struct {
	NetOriginal   decimal.Decimal
	Reimbursement decimal.Decimal
	Timing        enum.PaymentTiming
}

// AmountResult is the recomputed amount set of a signed receipt.
type AmountResult struct {
	Reimbursement decimal.Decimal
	AdvanceFee    decimal.Decimal
	Net           decimal.Decimal
	Gross         decimal.Decimal
	Withholding   decimal.Decimal
	TotalPayable  decimal.Decimal
}

// ComputeAmounts recomputes the receipt amounts from the performer's
// signature choices. The reimbursement is capped at the configured maximum
// and paid untaxed: it lowers the taxable net, and gross and withholding are
// rederived from the lowered net. Anticipated payment costs a fixed fee and
// is only available up to the configured net ceiling.
func ComputeAmounts(rules AmountRules, input AmountInput) (*AmountResult, error) {
	if input.Reimbursement.IsNegative() {
		return nil, apperror.NewUnprocessableError("Reimbursement cannot be negative")
	}

	reimbursement := input.Reimbursement
	if reimbursement.GreaterThan(rules.MaxReimbursement) {
		reimbursement = rules.MaxReimbursement
	}

	advanceFee := decimal.Zero
	if input.Timing == enum.PaymentTimingAnticipato {
		if input.NetOriginal.GreaterThan(rules.AdvanceNetCeiling) {
			return nil, apperror.NewUnprocessableError(
				"Anticipated payment is only available up to a net compensation of " +
					rules.AdvanceNetCeiling.StringFixed(2) + " EUR")
		}
		advanceFee = rules.AdvanceFee
	}

	net := input.NetOriginal.Sub(reimbursement)
	if net.IsNegative() {
		return nil, apperror.NewUnprocessableError("Reimbursement exceeds the net compensation")
	}

	gross := net.Div(netRate).Round(2)
	withholding := gross.Sub(net)
	totalPayable := net.Add(reimbursement).Sub(advanceFee)

	return &AmountResult{
		Reimbursement: reimbursement,
		AdvanceFee:    advanceFee,
		Net:           net,
		Gross:         gross,
		Withholding:   withholding,
		TotalPayable:  totalPayable,
	}, nil
}
