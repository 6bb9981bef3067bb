// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package fs

import "testing"

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"terrain.png":        "image/png",
		"us-east-1/0/a.json": "application/json",
		"index.html":         "",
		"png":                "",
	}

	for filename, want := range tests {
		got := ContentType(filename)
		if want == "" {
			if got != nil {
				t.Errorf("%s: expected nil got %s", filename, *got)
			}
			continue
		}
		if got == nil || *got != want {
			t.Errorf("%s: expected %s got %v", filename, want, got)
		}
	}
}
