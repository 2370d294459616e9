// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result *projection.Projection) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "--- Revenue projection from base revenue $%.2f ---\n", result.BaseRevenue)
	fmt.Fprintf(w, "Year | Growth | Revenue | Expenses | Net Income | Present Value\n")
	fmt.Fprintf(w, "____ | ______ | _______ | ________ | __________ | _____________\n")
	for _, year := range result.Years {
		_, _ = p.Fprintf(w, "%d | %s | $%.2f | $%.2f | $%.2f | $%.2f\n",
			year.Year, format.Percent(year.Growth), year.Revenue, year.Expenses, year.NetIncome, year.Discounted)
	}
	fmt.Fprintf(w, "\n")
	_, _ = p.Fprintf(w, "Terminal value: $%.2f (discounted $%.2f)\n", result.TerminalValue, result.DiscountedTerminal)
	_, _ = p.Fprintf(w, "Present value:  $%.2f\n", result.PresentValue)
}

// CsvFormat writes the projection in comma-separated value format.
func CsvFormat(w io.Writer, result *projection.Projection) {
	fmt.Fprintf(w, `"year","growth","revenue","expenses","net income","present value"`)
	fmt.Fprintf(w, "\n")
	for _, year := range result.Years {
		fmt.Fprintf(w, `"%d","%.4f","%.2f","%.2f","%.2f","%.2f"`,
			year.Year, year.Growth, year.Revenue, year.Expenses, year.NetIncome, year.Discounted)
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, `"terminal","%.4f","","","%.2f","%.2f"`,
		result.Assumptions.TerminalGrowth, result.TerminalValue, result.DiscountedTerminal)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, `"total","","","","","%.2f"`, result.PresentValue)
	fmt.Fprintf(w, "\n")
}
