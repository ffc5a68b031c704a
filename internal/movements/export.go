package movements

import (
	"encoding/csv"
	"io"
	"strconv"
)

var exportHeader = []string{
	"id", "ref", "asset_id", "actor_id", "kind",
	"origin", "destination", "notes", "created_at",
}

// WriteCSV streams the given movements as CSV. Timestamps use the
// dd/mm/yyyy convention the export consumers expect.
func WriteCSV(w io.Writer, history []Movement) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, m := range history {
		row := []string{
			strconv.FormatInt(m.ID, 10),
			m.Ref,
			strconv.FormatInt(m.AssetID, 10),
			strconv.FormatInt(m.ActorID, 10),
			m.Kind,
			m.Origin,
			m.Destination,
			m.Notes,
			m.CreatedAt.Format("02/01/2006 15:04"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
