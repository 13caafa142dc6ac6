package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fincircle/internal/core"
)

// parseLedgerRows converts a values matrix whose first row is a header into
// raw records. Columns are located by header name. When an Owner column is
// present, rows owned by someone else are dropped; rows with a blank owner
// are attributed to ownerID.
func parseLedgerRows(values [][]interface{}, ownerID string) []core.RawRecord {
	out := make([]core.RawRecord, 0)
	if len(values) == 0 {
		return out
	}
	headers := toStrings(values[0])
	col := func(names ...string) int {
		for _, n := range names {
			if i := indexOf(headers, n); i != -1 {
				return i
			}
		}
		return -1
	}
	var (
		colID    = col("ID")
		colDate  = col("Date")
		colType  = col("Type", "Flow")
		colCat   = col("Category")
		colSub   = col("Subcategory")
		colAmt   = col("Amount")
		colNotes = col("Notes", "Description")
		colOwner = col("Owner", "Owner ID", "User")
		colGroup = col("Group", "Group ID")
	)

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		owner := safeGet(row, colOwner)
		if owner != "" && owner != ownerID {
			continue
		}
		if owner == "" {
			owner = ownerID
		}
		id := safeGet(row, colID)
		if id == "" {
			// Row numbers are 1-based in the sheet
			id = fmt.Sprintf("row:%d", i+1)
		}
		out = append(out, core.RawRecord{
			ID:          id,
			Date:        cellDate(rawGet(values[i], colDate)),
			Type:        safeGet(row, colType),
			Category:    safeGet(row, colCat),
			Subcategory: safeGet(row, colSub),
			Amount:      safeGet(row, colAmt),
			Notes:       safeGet(row, colNotes),
			OwnerID:     owner,
			GroupID:     safeGet(row, colGroup),
		})
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = cellString(v)
	}
	return out
}

// cellString renders a cell read with UNFORMATTED_VALUE. Numbers arrive as
// float64 and are written in plain notation with a dot decimal mark, so the
// sheet's locale and number format never reach the amount parser.
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// cellDate turns a serial date into YYYY-MM-DD, dropping any time of day.
// Dates stored as text pass through unchanged.
func cellDate(v interface{}) string {
	if f, ok := v.(float64); ok {
		return sheetsEpoch.AddDate(0, 0, int(math.Floor(f))).Format("2006-01-02")
	}
	return cellString(v)
}

func rawGet(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
