package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/codr1/courtbook/internal/models"
)

type Message struct {
	Subject string
	Body    string
}

// FormatDateTimeRange renders a reservation's date and time range for
// humans, e.g. "Tuesday, Jun 10, 2025" and "3:00 PM - 5:00 PM".
func FormatDateTimeRange(res models.Reservation) (string, string) {
	day, err := time.Parse(models.DateLayout, res.Date)
	if err != nil {
		return res.Date, res.StartTime
	}
	start, end, ok := res.Interval()
	if !ok {
		return day.Format("Monday, Jan 2, 2006"), res.StartTime
	}
	startAt := day.Add(time.Duration(start) * time.Minute)
	endAt := day.Add(time.Duration(end) * time.Minute)
	return day.Format("Monday, Jan 2, 2006"), fmt.Sprintf("%s - %s", startAt.Format("3:04 PM"), endAt.Format("3:04 PM"))
}

func facilityLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "your facility"
	}
	return name
}

func reservationLines(facilityName string, res models.Reservation) []string {
	date, timeRange := FormatDateTimeRange(res)
	return []string{
		fmt.Sprintf("Facility: %s", facilityLabel(facilityName)),
		fmt.Sprintf("Court: %d", res.Court),
		fmt.Sprintf("Date: %s", date),
		fmt.Sprintf("Time: %s", timeRange),
	}
}

func BuildConfirmationEmail(facilityName string, res models.Reservation) Message {
	lines := []string{
		fmt.Sprintf("Hi %s, your court booking is confirmed.", res.ContactName),
		"",
	}
	lines = append(lines, reservationLines(facilityName, res)...)
	if res.DiscountPercent > 0 {
		lines = append(lines, fmt.Sprintf("Price: %d (%d%% off %d)", res.Price, res.DiscountPercent, res.BasePrice))
	} else {
		lines = append(lines, fmt.Sprintf("Price: %d", res.Price))
	}
	lines = append(lines, fmt.Sprintf("Reference: %s", res.ID))

	return Message{
		Subject: fmt.Sprintf("Court Booking Confirmed - %s", facilityLabel(facilityName)),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildCancellationEmail(facilityName string, res models.Reservation) Message {
	lines := []string{
		fmt.Sprintf("Hi %s, your court booking has been cancelled.", res.ContactName),
		"",
	}
	lines = append(lines, reservationLines(facilityName, res)...)
	lines = append(lines, fmt.Sprintf("Reference: %s", res.ID))

	return Message{
		Subject: fmt.Sprintf("Court Booking Cancelled - %s", facilityLabel(facilityName)),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildPaymentEmail(facilityName string, res models.Reservation) Message {
	method := "unspecified"
	if res.PaymentMethod != nil {
		method = *res.PaymentMethod
	}
	lines := []string{
		fmt.Sprintf("Hi %s, we received your payment.", res.ContactName),
		"",
	}
	lines = append(lines, reservationLines(facilityName, res)...)
	lines = append(lines,
		fmt.Sprintf("Amount: %d", res.Price),
		fmt.Sprintf("Method: %s", method),
	)

	return Message{
		Subject: fmt.Sprintf("Payment Received - %s", facilityLabel(facilityName)),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildReminderEmail(facilityName string, res models.Reservation) Message {
	lines := []string{
		fmt.Sprintf("Reminder: your court booking is coming up, %s.", res.ContactName),
		"",
	}
	lines = append(lines, reservationLines(facilityName, res)...)

	return Message{
		Subject: fmt.Sprintf("Upcoming Court Booking Reminder - %s", facilityLabel(facilityName)),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildRegistrationEmail(facilityName string, tournament models.Tournament, participant models.Participant) Message {
	lines := []string{
		fmt.Sprintf("Hi %s, you are registered for %s.", participant.Name, tournament.Name),
		"",
		fmt.Sprintf("Facility: %s", facilityLabel(facilityName)),
		fmt.Sprintf("Dates: %s to %s", tournament.StartDate, tournament.EndDate),
	}
	if category := strings.TrimSpace(tournament.Category); category != "" {
		lines = append(lines, fmt.Sprintf("Category: %s", category))
	}
	if participant.PartnerName != nil {
		lines = append(lines, fmt.Sprintf("Partner: %s", *participant.PartnerName))
	}
	if tournament.RegistrationPrice > 0 {
		lines = append(lines, fmt.Sprintf("Registration fee: %d (due before play starts)", tournament.RegistrationPrice))
	}

	return Message{
		Subject: fmt.Sprintf("Tournament Registration Confirmed - %s", tournament.Name),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildUnregistrationEmail(facilityName string, tournament models.Tournament, participant models.Participant) Message {
	lines := []string{
		fmt.Sprintf("Hi %s, your registration for %s has been withdrawn.", participant.Name, tournament.Name),
		"",
		fmt.Sprintf("Facility: %s", facilityLabel(facilityName)),
	}
	return Message{
		Subject: fmt.Sprintf("Tournament Registration Withdrawn - %s", tournament.Name),
		Body:    strings.Join(lines, "\n"),
	}
}
