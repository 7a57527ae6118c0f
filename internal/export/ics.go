package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/metropolisapp/metropolis/internal/models"
)

const icsProdID = "-//Metropolis Itinerary//metropolis.app//"

// ICS renders an itinerary as an iCalendar document. Items without a
// date inherit the first trip date; unparsable times fall back to a
// 09:00-10:00 slot.
func ICS(it models.Itinerary) string {
	defaultDate := models.FirstDate(it.Dates)
	if defaultDate == "" {
		defaultDate = time.Now().UTC().Format("2006-01-02")
	}

	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "PRODID:"+icsProdID)
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, fmt.Sprintf("X-WR-CALNAME:Metropolis - %s Itinerary", escapeText(it.City)))

	for _, item := range it.Items {
		date := item.Date
		if date == "" {
			date = defaultDate
		}
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			day, _ = time.Parse("2006-01-02", defaultDate)
		}

		start := at(day, parseClock(item.StartTime, "09:00"))
		end := at(day, parseClock(item.EndTime, "10:00"))

		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, "UID:"+uuid.NewString())
		writeLine(&b, "SUMMARY:"+escapeText(titleOrDefault(item.Title)))
		writeLine(&b, "DESCRIPTION:"+escapeText(item.Description))
		writeLine(&b, "LOCATION:"+escapeText(item.Location))
		writeLine(&b, "DTSTART:"+start.Format("20060102T150405"))
		writeLine(&b, "DTEND:"+end.Format("20060102T150405"))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// writeLine terminates each content line with CRLF as RFC 5545 requires.
func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString("\r\n")
}

// parseClock parses an HH:MM string, substituting the fallback when the
// value is missing or malformed.
func parseClock(s, fallback string) time.Time {
	t, err := time.Parse("15:04", s)
	if err != nil {
		t, _ = time.Parse("15:04", fallback)
	}
	return t
}

func at(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
}

func titleOrDefault(title string) string {
	if title == "" {
		return "Event"
	}
	return title
}

// escapeText escapes the characters RFC 5545 reserves in text values.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
