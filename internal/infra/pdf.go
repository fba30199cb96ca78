package infra

// pdf.go — daily summary sheet rendered with go-pdf/fpdf:
//   - date range header
//   - sales / expenses / deposits totals with cash-online split
//   - per-tier table (price, units sold, revenue, share)
//   - closing balances (bank line only present when the caller may see it)

import (
	"fmt"
	"io"

	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/go-pdf/fpdf"
)

// WriteSummaryPDF renders the aggregate report to w as an A5 sheet.
func WriteSummaryPDF(summary *dto.SummaryResponse, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "The 149 Store", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	title := fmt.Sprintf("Summary  %s", summary.From)
	if summary.To != summary.From {
		title = fmt.Sprintf("Summary  %s to %s", summary.From, summary.To)
	}
	pdf.CellFormat(contentW, 6, title, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	line := func(label string, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.6, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 6, value, "", 1, "R", false, 0, "")
	}

	line(fmt.Sprintf("Sales (%d)", summary.SaleCount), fmt.Sprintf("%d", summary.SalesTotal), true)
	line("  cash", fmt.Sprintf("%d", summary.SalesCash), false)
	line("  online", fmt.Sprintf("%d", summary.SalesOnline), false)
	line(fmt.Sprintf("Expenses (%d)", summary.ExpenseCount), fmt.Sprintf("%d", summary.ExpensesTotal), true)
	line("  cash", fmt.Sprintf("%d", summary.ExpensesCash), false)
	line("  online", fmt.Sprintf("%d", summary.ExpensesOnline), false)
	line(fmt.Sprintf("Deposits (%d)", summary.DepositCount), fmt.Sprintf("%d", summary.DepositsTotal), true)
	if !summary.AverageSale.IsZero() {
		line("Average sale", summary.AverageSale.StringFixed(2), false)
	}

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	if len(summary.Categories) > 0 {
		col1 := contentW * 0.25
		col2 := contentW * 0.25
		col3 := contentW * 0.28
		col4 := contentW * 0.22

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(col1, 5, "Price", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, "Units", "B", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "Revenue", "B", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "Share", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, c := range summary.Categories {
			pdf.CellFormat(col1, 5, fmt.Sprintf("%d", c.Price), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, fmt.Sprintf("%d", c.UnitsSold), "", 0, "C", false, 0, "")
			pdf.CellFormat(col3, 5, fmt.Sprintf("%d", c.Revenue), "", 0, "R", false, 0, "")
			pdf.CellFormat(col4, 5, c.RevenueShare.StringFixed(2)+"%", "", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
		pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
		pdf.Ln(2)
	}

	line("Shop balance", fmt.Sprintf("%d", summary.ShopBalance), true)
	if summary.BankBalance != nil {
		line("Bank balance", fmt.Sprintf("%d", *summary.BankBalance), true)
	}

	return pdf.Output(w)
}
