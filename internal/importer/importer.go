package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/admin"
)

type CodeCreator interface {
	CreateRechargeCode(ctx context.Context, clientID string, in admin.NewRechargeCode) (domain.RechargeCode, error)
}

// CSVImporter reads recharge-code batches (code,amount_vnd,expires_at) and
// mints each code through the admin procedures as clientID.
type CSVImporter struct {
	reader   *csv.Reader
	codes    CodeCreator
	clientID string
}

func NewCSVImporter(r io.Reader, codes CodeCreator, clientID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		codes:    codes,
		clientID: clientID,
	}
}

type csvRow struct {
	Line      int
	Code      string
	AmountVND int64
	ExpiresAt *time.Time
}

// Run creates one code per non-empty row and stops at the first failure,
// returning how many were created before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["amount_vnd"]; !ok {
		return 0, errors.New("missing amount_vnd column")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	_, err := i.codes.CreateRechargeCode(ctx, i.clientID, admin.NewRechargeCode{
		Code:      row.Code,
		AmountVND: row.AmountVND,
		ExpiresAt: row.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("line %d: create code %q: %w", row.Line, row.Code, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	code := pick(record, index, "code")
	amount := pick(record, index, "amount_vnd")
	expires := pick(record, index, "expires_at")

	if code == "" && amount == "" && expires == "" {
		return nil, nil
	}

	vnd, err := strconv.ParseInt(strings.ReplaceAll(amount, "_", ""), 10, 64)
	if err != nil || vnd <= 0 {
		return nil, fmt.Errorf("line %d: invalid amount_vnd %q", line, amount)
	}
	row := &csvRow{Line: line, Code: code, AmountVND: vnd}
	if expires != "" {
		t, err := parseTime(expires)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid expires_at %q", line, expires)
		}
		row.ExpiresAt = &t
	}
	return row, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates, which expire at the
// end of that day in UTC.
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(24*time.Hour - time.Second), nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
