// Package ingest parses the upstream CSV datasets into domain records:
// transaction-level sales, the daily oil price series, and the holiday
// calendar.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"revenue-lab/internal/domain"
)

const dateLayout = "2006-01-02"

// LoadSalesCSV parses transaction-level sales rows. Expected columns:
// date, store_nbr, family, sales, onpromotion. Extra columns are ignored.
func LoadSalesCSV(r io.Reader) ([]*domain.SalesRecord, error) {
	rows, idx, err := readAll(r, "date", "store_nbr", "family", "sales", "onpromotion")
	if err != nil {
		return nil, err
	}

	records := make([]*domain.SalesRecord, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate(row[idx["date"]], i)
		if err != nil {
			return nil, err
		}
		sales, err := parseFloat(row[idx["sales"]], "sales", i)
		if err != nil {
			return nil, err
		}
		promo, err := parseInt(row[idx["onpromotion"]], "onpromotion", i)
		if err != nil {
			return nil, err
		}
		records = append(records, &domain.SalesRecord{
			Date:        date,
			StoreID:     row[idx["store_nbr"]],
			Family:      row[idx["family"]],
			Sales:       sales,
			OnPromotion: promo,
		})
	}
	return records, nil
}

// LoadOilCSV parses the daily commodity price series. Expected columns:
// date, dcoilwtico. An empty price cell is a gap and yields a nil price.
func LoadOilCSV(r io.Reader) ([]*domain.OilPricePoint, error) {
	rows, idx, err := readAll(r, "date", "dcoilwtico")
	if err != nil {
		return nil, err
	}

	points := make([]*domain.OilPricePoint, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate(row[idx["date"]], i)
		if err != nil {
			return nil, err
		}
		p := &domain.OilPricePoint{Date: date}
		if cell := strings.TrimSpace(row[idx["dcoilwtico"]]); cell != "" {
			price, err := parseFloat(cell, "dcoilwtico", i)
			if err != nil {
				return nil, err
			}
			p.Price = &price
		}
		points = append(points, p)
	}
	return points, nil
}

// LoadHolidaysCSV parses the holiday calendar. Only the date column is
// required; description and type are carried through when present.
func LoadHolidaysCSV(r io.Reader) ([]*domain.Holiday, error) {
	rows, idx, err := readAll(r, "date")
	if err != nil {
		return nil, err
	}

	holidays := make([]*domain.Holiday, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate(row[idx["date"]], i)
		if err != nil {
			return nil, err
		}
		h := &domain.Holiday{Date: date}
		if j, ok := idx["description"]; ok {
			h.Name = row[j]
		}
		if j, ok := idx["type"]; ok {
			h.Kind = row[j]
		}
		holidays = append(holidays, h)
	}
	return holidays, nil
}

// LoadSalesFile, LoadOilFile and LoadHolidaysFile are path convenience
// wrappers around the reader-based loaders.
func LoadSalesFile(path string) ([]*domain.SalesRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales csv: %w", err)
	}
	defer f.Close()
	return LoadSalesCSV(f)
}

func LoadOilFile(path string) ([]*domain.OilPricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open oil csv: %w", err)
	}
	defer f.Close()
	return LoadOilCSV(f)
}

func LoadHolidaysFile(path string) ([]*domain.Holiday, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holidays csv: %w", err)
	}
	defer f.Close()
	return LoadHolidaysCSV(f)
}

// readAll reads header + rows and resolves the index of every header column.
// The required columns must all be present.
func readAll(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read csv header: %v", domain.ErrData, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, nil, fmt.Errorf("%w: missing required column %q", domain.ErrData, name)
		}
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read csv row: %v", domain.ErrData, err)
		}
		if len(row) < len(header) {
			return nil, nil, fmt.Errorf("%w: row %d has %d fields, want %d", domain.ErrData, len(rows)+1, len(row), len(header))
		}
		rows = append(rows, row)
	}
	return rows, idx, nil
}

func parseDate(cell string, row int) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(cell))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: row %d: bad date %q", domain.ErrData, row+1, cell)
	}
	return d.UTC(), nil
}

func parseFloat(cell, col string, row int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d: bad %s value %q", domain.ErrData, row+1, col, cell)
	}
	return v, nil
}

func parseInt(cell, col string, row int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		// Some exports carry promotion flags as floats.
		f, ferr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if ferr != nil {
			return 0, fmt.Errorf("%w: row %d: bad %s value %q", domain.ErrData, row+1, col, cell)
		}
		return int(f), nil
	}
	return v, nil
}
