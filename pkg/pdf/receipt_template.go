package pdf

import (
	"bytes"
	"html/template"
)

// ReceiptLineData is one booking row of the rendered receipt.
type ReceiptLineData struct {
	Date        string
	Venue       string
	Gross       string
	Withholding string
	Net         string
}

// ReceiptData carries everything the receipt document shows.
type ReceiptData struct {
	Code          string
	IssuedAt      string
	PerformerName string
	TaxCode       string
	Address       string
	PostalCode    string
	City          string
	Province      string
	IBAN          string
	Lines         []ReceiptLineData
	Gross         string
	Withholding   string
	Net           string
	Reimbursement string
	AdvanceFee    string
	TotalPayable  string
	SignerName    string
	SignedAt      string
	PaymentTiming string
	AgencyName    string
	AgencyAddress string
}

// RenderReceiptHTML fills the receipt document template.
func RenderReceiptHTML(data *ReceiptData) (string, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 16px; margin-bottom: 2px; }
  .muted { color: #666; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #f2f2f2; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 16px; width: 50%; margin-left: auto; }
  .totals td { border: none; padding: 3px 8px; }
  .totals .grand td { border-top: 1px solid #222; font-weight: bold; }
  .signature { margin-top: 32px; }
</style>
</head>
<body>
  <h1>Ricevuta per prestazione occasionale n. {{.Code}}</h1>
  <p class="muted">Emessa il {{.IssuedAt}}{{if .AgencyName}} &mdash; {{.AgencyName}}{{if .AgencyAddress}}, {{.AgencyAddress}}{{end}}{{end}}</p>

  <p>
    <strong>{{.PerformerName}}</strong><br>
    Codice fiscale: {{.TaxCode}}<br>
    {{.Address}}, {{.PostalCode}} {{.City}} ({{.Province}})<br>
    IBAN: {{.IBAN}}
  </p>

  <table>
    <thead>
      <tr>
        <th>Data</th>
        <th>Luogo</th>
        <th class="num">Lordo</th>
        <th class="num">Ritenuta</th>
        <th class="num">Netto</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{.Date}}</td>
        <td>{{.Venue}}</td>
        <td class="num">{{.Gross}}</td>
        <td class="num">{{.Withholding}}</td>
        <td class="num">{{.Net}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Compenso lordo</td><td class="num">&euro; {{.Gross}}</td></tr>
    <tr><td>Ritenuta d'acconto (20%)</td><td class="num">&euro; {{.Withholding}}</td></tr>
    <tr><td>Compenso netto</td><td class="num">&euro; {{.Net}}</td></tr>
    {{if .Reimbursement}}<tr><td>Rimborso spese documentate</td><td class="num">&euro; {{.Reimbursement}}</td></tr>{{end}}
    {{if .AdvanceFee}}<tr><td>Commissione pagamento anticipato</td><td class="num">-&euro; {{.AdvanceFee}}</td></tr>{{end}}
    <tr class="grand"><td>Totale da corrispondere</td><td class="num">&euro; {{.TotalPayable}}</td></tr>
  </table>

  {{if .SignerName}}
  <div class="signature">
    <p>Firmato da <strong>{{.SignerName}}</strong> il {{.SignedAt}}{{if .PaymentTiming}} &mdash; modalit&agrave; di pagamento: {{.PaymentTiming}}{{end}}.</p>
  </div>
  {{end}}
</body>
</html>
`
