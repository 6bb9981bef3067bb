// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// AppendLog appends one CSV row to filename, creating it if needed.
func AppendLog(filename string, fields ...interface{}) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(formatFields(fields)); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func formatFields(fields []interface{}) []string {
	fieldStrings := make([]string, 0, len(fields))
	for _, field := range fields {
		var fieldString string

		switch v := field.(type) {
		case float32, float64:
			fieldString = fmt.Sprintf("%.2f", v)
		case time.Duration:
			fieldString = fmt.Sprintf("%.3f", v.Seconds()*1000)
		default:
			fieldString = fmt.Sprint(v)
		}

		fieldStrings = append(fieldStrings, fieldString)
	}
	return fieldStrings
}
