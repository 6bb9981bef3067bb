// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	_ "embed"
	"math/rand"
	"strings"
)

//go:embed names.txt
var botNamesRaw string

var botNames = strings.Split(strings.TrimSpace(botNamesRaw), "\n")

func randomBotName(r *rand.Rand) (name string) {
	for name == "" {
		name = strings.TrimSpace(botNames[r.Intn(len(botNames))])
	}

	if prob(r, 0.1) {
		name = strings.ToLower(name)
	}
	return
}
