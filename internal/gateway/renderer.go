package gateway

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"vet-portal/internal/models"
)

// Renderer lays out the one-page appointment ticket.
type Renderer struct {
	location *time.Location
	now      func() time.Time
}

// NewRenderer creates a Renderer printing the visit time in loc.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{location: loc, now: time.Now}
}

// Render returns the PDF document for payload.
func (r *Renderer) Render(p *models.TicketPayload) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Appointment ticket "+p.ID.String(), true)
	pdf.SetCreator("vet-portal ticket gateway", true)
	pdf.AddPage()
	// Core fonts are cp1252; characters outside it are replaced.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Appointment ticket", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 13)
	rows := [][2]string{
		{"Owner", p.FullName},
		{"Phone", p.UserPhone},
		{"Pet", p.Nickname + " (" + p.AnimalType + ")"},
		{"Visit", p.DateUTC.In(r.location).Format("02.01.2006 15:04 MST")},
		{"Cabinet", p.Cabinet},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(35, 9, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 13)
		pdf.CellFormat(0, 9, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Courier", "", 11)
	pdf.CellFormat(0, 8, "Check-in code: "+p.QRPayload, "1", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Issued "+r.now().UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render ticket")
	}
	return buf.Bytes(), nil
}
