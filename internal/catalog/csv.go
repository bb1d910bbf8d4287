package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xtding233/gacha-curve/internal/gacha"
)

var csvHeader = []string{"label", "probability", "count"}

// ParseCSV reads label,probability,count rows. The first row is a header and
// is skipped; rows with fewer than three columns, an empty label or
// probability, or a non-integer count are skipped as well.
func ParseCSV(r io.Reader) ([]gacha.ItemGroup, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var items []gacha.ItemGroup
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if row == 0 || len(rec) < 3 {
			continue
		}
		label := strings.TrimSpace(rec[0])
		prob := strings.TrimSpace(rec[1])
		count, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if label == "" || prob == "" || err != nil {
			continue
		}
		items = append(items, gacha.ItemGroup{Label: label, Probability: prob, Count: count})
	}
	return items, nil
}

// WriteCSV writes items with a label,probability,count header.
func WriteCSV(w io.Writer, items []gacha.ItemGroup) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Label, it.Probability, strconv.Itoa(it.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
