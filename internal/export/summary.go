package export

import (
	"fmt"
	"io"

	"github.com/joseph-ayodele/incidents-tracker/internal/entity"
)

// WriteNatureSummary prints one "nature|count" line per row, in the order
// given. Nothing is written for an empty summary.
func WriteNatureSummary(w io.Writer, counts []entity.NatureCount) error {
	for _, c := range counts {
		if _, err := fmt.Fprintf(w, "%s|%d\n", c.Nature, c.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteIncidents dumps every stored incident, one pipe-separated row each.
func WriteIncidents(w io.Writer, incidents []entity.Incident) error {
	if len(incidents) == 0 {
		_, err := fmt.Fprintln(w, "No incidents found in the database.")
		return err
	}
	for _, inc := range incidents {
		if _, err := fmt.Fprintf(w, "%s|%s|%s|%s|%s\n",
			inc.Time, inc.Number, inc.Location, inc.Nature, inc.ORI); err != nil {
			return err
		}
	}
	return nil
}
