package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/contactbook/internal/adapters/vcard"
	"github.com/eshaffer321/contactbook/internal/application/service"
)

// PrintBirthdays prints upcoming birthdays as an aligned table
func PrintBirthdays(w io.Writer, upcoming []service.UpcomingBirthday, days int) error {
	if len(upcoming) == 0 {
		_, err := fmt.Fprintf(w, "No birthdays in the next %d days\n", days)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tIN\tNAME\tAGE\tEMAIL\tPHONE")
	for _, u := range upcoming {
		age := "-"
		if u.TurningAge > 0 {
			age = fmt.Sprint(u.TurningAge)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Occurrence.Format("Mon Jan 02"),
			inDays(u.DaysUntil),
			u.Contact.FullName(),
			age,
			u.Contact.Email,
			u.Contact.PhoneNumber,
		)
	}
	return tw.Flush()
}

func inDays(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("%d days", n)
	}
}

// PrintImportSummary prints created and skipped counts followed by each skip reason
func PrintImportSummary(w io.Writer, result *service.ImportResult, cardErrs []*vcard.CardError) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Created=%d Skipped=%d\n", len(result.Created), len(result.Skipped)+len(cardErrs))

	if len(cardErrs) == 0 && len(result.Skipped) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSkipped:")
	for _, ce := range cardErrs {
		fmt.Fprintf(w, "  - %v\n", ce)
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  - %s: %s\n", s.Name, s.Reason)
	}
}
