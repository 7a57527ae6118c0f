package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/metropolisapp/metropolis/internal/models"
)

// PDF renders an itinerary as a printable A4 document.
func PDF(it models.Itinerary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Metropolis - %s Itinerary", it.City), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("%s Itinerary", it.City))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	if len(it.Dates) > 0 {
		pdf.Cell(0, 7, "Dates: "+joinDates(it.Dates))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Budget: %s    Estimated total: $%.2f", it.Budget, it.TotalCost))
	pdf.Ln(7)
	if it.Summary != "" {
		pdf.Cell(0, 7, it.Summary)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	for i, item := range it.Items {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, fmt.Sprintf("%d. %s", i+1, titleOrDefault(item.Title)))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		if item.Date != "" || item.StartTime != "" {
			pdf.Cell(0, 6, fmt.Sprintf("%s  %s - %s", item.Date, item.StartTime, item.EndTime))
			pdf.Ln(6)
		}
		if item.Location != "" {
			pdf.Cell(0, 6, "Location: "+item.Location)
			pdf.Ln(6)
		}
		if item.EstimatedCost > 0 {
			pdf.Cell(0, 6, fmt.Sprintf("Estimated cost: $%.2f", item.EstimatedCost))
			pdf.Ln(6)
		}
		if item.Description != "" {
			pdf.MultiCell(0, 5, item.Description, "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func joinDates(dates []string) string {
	if len(dates) == 1 {
		return dates[0]
	}
	return dates[0] + " to " + dates[len(dates)-1]
}
