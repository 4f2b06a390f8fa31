package vcard

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/eshaffer321/contactbook/internal/domain/contacts"
)

const (
	calendarProdID = "-//contactbook//Upcoming Birthdays//EN"
	calendarName   = "Upcoming birthdays"
	uidDomain      = "contactbook"
)

// emptyCalendar is served when there is nothing to list; the encoder refuses
// calendars without components.
const emptyCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:" + calendarProdID + "\r\n" +
	"X-WR-CALNAME:" + calendarName + "\r\n" +
	"END:VCALENDAR\r\n"

// BirthdayEvent is one birthday occurrence to publish.
type BirthdayEvent struct {
	Contact    *contacts.Contact
	Occurrence time.Time
	TurningAge int
}

// EncodeCalendar writes one all-day event per occurrence.
func EncodeCalendar(w io.Writer, events []BirthdayEvent, now time.Time) error {
	if len(events) == 0 {
		_, err := io.WriteString(w, emptyCalendar)
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProdID)
	cal.Props.SetText("X-WR-CALNAME", calendarName)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, e := range events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%d-%s@%s", e.Contact.ID, e.Occurrence.Format("20060102"), uidDomain))
		event.Props.SetText(ical.PropSummary, summary(e))

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(e.Occurrence)
		event.Props.Set(start)
		event.Props.Set(stamp)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func summary(e BirthdayEvent) string {
	name := e.Contact.FullName()
	if e.TurningAge > 0 {
		return fmt.Sprintf("%s's birthday (%d)", name, e.TurningAge)
	}
	return name + "'s birthday"
}
