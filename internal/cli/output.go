package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"cloud.google.com/go/civil"

	"github.com/mcoot/dutyledger/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Created:
		o.printf("Created: %s\n", v.ID)
	case response.PersonStatus:
		o.printPerson(v)
	case response.PersonList:
		o.printPersonList(v)
	case response.DutyHistory:
		o.printDutyHistory(v)
	case response.ProcessLogList:
		o.printProcessLogs(v)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printPerson(p response.PersonStatus) {
	o.printf("Person: %s (%s)\n", p.Name, p.ID)
	if p.CurrentRank == "" {
		o.printf("No duties recorded\n")
		return
	}
	o.printf("Rank: %s\n", p.CurrentRank)
	o.printf("Duty: %s\n", p.CurrentDutyTitle)
	o.printf("Career: %s to %s\n", formatDate(p.CareerStartDate), formatDate(p.CareerEndDate))
	if p.Retired {
		o.printf("Retired: yes\n")
	}
}

func (o *Output) printPersonList(l response.PersonList) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tRANK\tDUTY\tSTART\tEND")
	for _, p := range l.Persons {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, dash(p.CurrentRank), dash(p.CurrentDutyTitle),
			formatDate(p.CareerStartDate), formatDate(p.CareerEndDate))
	}
	_ = tw.Flush()
}

func (o *Output) printDutyHistory(h response.DutyHistory) {
	o.printf("Person: %s (%s)\n", h.Person.Name, h.Person.ID)
	if len(h.Duties) == 0 {
		o.printf("No duties recorded\n")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tDUTY\tSTART\tEND")
	for _, d := range h.Duties {
		end := "current"
		if date, closed := d.EndDate.EndDate(); closed {
			end = date.String()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Rank, d.DutyTitle, d.StartDate, end)
	}
	_ = tw.Flush()
}

func (o *Output) printProcessLogs(l response.ProcessLogList) {
	for _, e := range l.Entries {
		o.printf("%s [%s] %s %s", e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Level, e.RequestPath, e.Message)
		if e.Error != "" {
			o.printf(": %s", e.Error)
		}
		o.printf("\n")
	}
}

func formatDate(d *civil.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
