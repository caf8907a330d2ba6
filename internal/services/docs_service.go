package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DocsService renders the PDF e-ticket for a booking.
type DocsService struct {
	Bookings  BookingService
	Logger    *zap.Logger
	Now       func() time.Time
	RequestID string
	Loader    func(ctx context.Context, rc domain.RequestContext, bookingID string) (ticketDocData, error)
}

type ticketDocData struct {
	Reference   string
	Passenger   string
	StudentID   string
	University  string
	Phone       string
	RouteFrom   string
	RouteTo     string
	TripDate    time.Time
	TripTime    string
	TicketCount int
	TotalAmount decimal.Decimal
	Status      string
	BookedAt    time.Time
}

func (s DocsService) GenerateETicket(ctx context.Context, rc domain.RequestContext, bookingID string) ([]byte, string, error) {
	data, err := s.loadTicketData(ctx, rc, bookingID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.Logger, s.RequestID, "docs", "generate_eticket", "ticket rendered", zap.String("booking_id", bookingID))
	pdf, name, err := buildETicketPDF(data, nowOr(s.Now))
	if err != nil {
		return nil, "", domain.InternalError{Msg: "could not render ticket", Err: err}
	}
	return pdf, name, nil
}

func (s DocsService) loadTicketData(ctx context.Context, rc domain.RequestContext, bookingID string) (ticketDocData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, rc, bookingID)
	}
	b, err := s.Bookings.GetForCaller(ctx, rc, bookingID)
	if err != nil {
		return ticketDocData{}, err
	}
	out := ticketDocData{
		Reference:   b.Reference,
		TicketCount: b.TicketCount,
		TotalAmount: b.TotalAmount,
		Status:      string(b.Status),
		BookedAt:    b.CreatedAt,
	}
	if b.User != nil {
		out.Passenger = b.User.Name
		out.StudentID = b.User.StudentID
		out.University = b.User.University
		out.Phone = b.User.Phone
	}
	if b.Trip != nil {
		out.RouteFrom = b.Trip.From
		out.RouteTo = b.Trip.To
		out.TripDate = b.Trip.Date
		out.TripTime = b.Trip.Time
	}
	return out, nil
}

func buildETicketPDF(d ticketDocData, issuedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Student Bus E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "STUDENT BUS E-TICKET")
	pdf.Ln(12)

	tripDate := "-"
	if !d.TripDate.IsZero() {
		tripDate = utils.FormatDate(d.TripDate)
	}

	// Core fonts are cp1252; the translator substitutes anything outside it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID     : %s", safe(d.Reference, "-")),
		fmt.Sprintf("Passenger      : %s", safe(d.Passenger, "-")),
		fmt.Sprintf("Student ID     : %s", safe(d.StudentID, "-")),
		fmt.Sprintf("University     : %s", safe(d.University, "-")),
		fmt.Sprintf("Phone          : %s", safe(d.Phone, "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(d.RouteFrom, "-"), safe(d.RouteTo, "-")),
		fmt.Sprintf("Departure      : %s %s", tripDate, safe(d.TripTime, "-")),
		fmt.Sprintf("Tickets        : %d", d.TicketCount),
		fmt.Sprintf("Total paid     : %s EGP", utils.FormatMoney(d.TotalAmount)),
		fmt.Sprintf("Status         : %s", safe(d.Status, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Issued %s. Show this ticket with your student card when boarding. Valid for %d seat(s).",
		issuedAt.UTC().Format(time.RFC3339), d.TicketCount), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.Reference))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
