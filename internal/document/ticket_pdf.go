// Package document renders boarding passes for paid orders as a PDF,
// one page per ticket, each with a QR code encoding the ticket
// reference for gate scanning.
package document

import (
    "bytes"
    "fmt"
    "time"

    "github.com/jung-kurt/gofpdf"
    "github.com/skip2/go-qrcode"
)

// BoardingPass carries everything printed on one page.
type BoardingPass struct {
    TicketID   uint64
    OrderRef   string // gateway payment reference of the owning order
    From       string
    To         string
    DepartsAt  time.Time
    SeatClass  string
    SeatNumber uint32
    PriceCents uint64 // total order price, printed on the first pass only
}

const qrSize = 300 // pixels; standard size for mobile scanning

// ticketReference is the string encoded into the QR code and printed
// in the footer.  Gate scanners resolve it back to the ticket row.
func ticketReference(p BoardingPass) string {
    return fmt.Sprintf("%s-T%d", p.OrderRef, p.TicketID)
}

// RenderBoardingPasses builds the PDF for an order's tickets.  The
// caller has already verified the order is paid.
func RenderBoardingPasses(passes []BoardingPass) ([]byte, error) {
    if len(passes) == 0 {
        return nil, fmt.Errorf("no tickets to render")
    }
    pdf := gofpdf.New("P", "mm", "A4", "")

    for i, p := range passes {
        pdf.AddPage()

        pdf.SetFont("Arial", "B", 20)
        pdf.CellFormat(0, 12, "BOARDING PASS", "", 1, "C", false, 0, "")
        pdf.Ln(4)

        ref := ticketReference(p)
        png, err := qrcode.Encode(ref, qrcode.Medium, qrSize)
        if err != nil {
            return nil, fmt.Errorf("qr encode ticket %d: %w", p.TicketID, err)
        }
        opts := gofpdf.ImageOptions{ImageType: "PNG"}
        name := fmt.Sprintf("qr_%d", p.TicketID)
        pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
        // 80x80mm QR centered on the 210mm page.
        pdf.ImageOptions(name, (210.0-80.0)/2, pdf.GetY(), 80, 80, false, opts, 0, "")
        pdf.Ln(84)

        pdf.SetDrawColor(200, 200, 200)
        pdf.SetLineWidth(0.5)
        pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
        pdf.Ln(8)

        pdf.SetFont("Arial", "B", 18)
        pdf.CellFormat(0, 10, fmt.Sprintf("%s  ->  %s", p.From, p.To), "", 1, "C", false, 0, "")
        pdf.Ln(4)

        writeField(pdf, "Departure:", p.DepartsAt.UTC().Format("January 2, 2006 15:04 UTC"))
        writeField(pdf, "Class:", p.SeatClass)
        writeField(pdf, "Seat:", fmt.Sprintf("%d", p.SeatNumber))
        if i == 0 {
            writeField(pdf, "Order total:", fmt.Sprintf("%d.%02d UAH", p.PriceCents/100, p.PriceCents%100))
        }
        pdf.Ln(6)

        pdf.SetFont("Arial", "I", 12)
        pdf.SetTextColor(100, 100, 100)
        pdf.CellFormat(0, 8, fmt.Sprintf("Ticket: %s", ref), "", 1, "C", false, 0, "")
        pdf.SetFont("Arial", "", 11)
        pdf.MultiCell(0, 6, "Present this pass at the gate.\nThe QR code will be scanned at boarding.", "", "C", false)
        pdf.SetTextColor(0, 0, 0)
    }

    var buf bytes.Buffer
    if err := pdf.Output(&buf); err != nil {
        return nil, fmt.Errorf("pdf output: %w", err)
    }
    return buf.Bytes(), nil
}

func writeField(pdf *gofpdf.Fpdf, label, value string) {
    pdf.SetFont("Arial", "", 14)
    pdf.SetX(50)
    pdf.CellFormat(40, 9, label, "", 0, "L", false, 0, "")
    pdf.SetFont("Arial", "B", 14)
    pdf.CellFormat(70, 9, value, "", 1, "L", false, 0, "")
}
