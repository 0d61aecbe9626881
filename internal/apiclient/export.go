package apiclient

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"anilistapi/pkg/models"
)

var csvHeader = []string{"id", "title", "status", "averageScore", "genres", "siteUrl"}

// WriteCSV writes one row per record. Genres are joined with "|".
func WriteCSV(w io.Writer, records []models.MediaRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.ID),
			r.DisplayTitle(),
			lo.FromPtr(r.Status),
			lo.TernaryF(r.AverageScore != nil, func() string { return strconv.Itoa(*r.AverageScore) }, lo.Empty[string]),
			strings.Join(r.Genres, "|"),
			r.SiteURL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
