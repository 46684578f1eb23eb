package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Line is one labelled amount on the slip.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

type Slip struct {
	CompanyName  string
	EmployeeName string
	EmployeeCode string
	Position     string
	BankAccount  string
	IssuedAt     time.Time

	Earnings   []Line
	Deductions []Line

	GrossEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
	EmployerCost    decimal.Decimal
}

const (
	labelWidth  = 120
	amountWidth = 60
	rowHeight   = 7
)

// Render writes the slip as a single A4 page.
func Render(s Slip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Salary Slip", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Salary Slip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Employee: %s (%s)", s.EmployeeName, s.EmployeeCode),
		fmt.Sprintf("Position: %s", orDash(s.Position)),
		fmt.Sprintf("Bank account: %s", orDash(s.BankAccount)),
		fmt.Sprintf("Issued: %s", s.IssuedAt.Format("2006-01-02")),
	}
	if s.CompanyName != "" {
		header = append([]string{fmt.Sprintf("Company: %s", s.CompanyName)}, header...)
	}
	for _, line := range header {
		pdf.Cell(0, rowHeight, line)
		pdf.Ln(rowHeight)
	}
	pdf.Ln(4)

	section(pdf, "Earnings", s.Earnings)
	total(pdf, "Gross earnings", s.GrossEarnings)
	pdf.Ln(4)

	section(pdf, "Deductions", s.Deductions)
	total(pdf, "Total deductions", s.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(labelWidth, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, 9, s.NetPay.StringFixed(2), "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Ln(2)
	pdf.Cell(0, rowHeight, fmt.Sprintf("Employer cost: %s", s.EmployerCost.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render salary slip: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, lines []Line) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(labelWidth, 8, title, "B", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		pdf.CellFormat(labelWidth, rowHeight, l.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, l.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
}

func total(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelWidth, rowHeight, label, "T", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, amount.StringFixed(2), "T", 1, "R", false, 0, "")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
