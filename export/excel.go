// Package export renders tender records as Excel workbooks.
package export

import (
	"bytes"
	"encoding/base64"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tenderwatch/crawler/tender"
)

const sheetName = "Tenders"

// Filename returns the export name for a workbook generated at now,
// e.g. tenders_20260115_093045.xlsx.
func Filename(now time.Time) string {
	return "tenders_" + now.Format("20060102_150405") + ".xlsx"
}

// Workbook builds an xlsx file with one header row followed by one row
// per record, columns in the canonical order.
func Workbook(records []tender.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, h := range tender.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}

		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for row, r := range records {
		for col, v := range r.Values() {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}

			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// WriteFile saves the records as an xlsx workbook at path.
func WriteFile(records []tender.Record, path string) error {
	f, err := Workbook(records)
	if err != nil {
		return err
	}

	return f.SaveAs(path)
}

// Encode returns the workbook as a base64 string for JSON transport.
func Encode(records []tender.Record) (string, error) {
	f, err := Workbook(records)
	if err != nil {
		return "", err
	}

	var buf *bytes.Buffer
	if buf, err = f.WriteToBuffer(); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
