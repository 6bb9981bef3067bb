// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"net"
)

// Server is a row of the servers table, keyed by region and slot.
type Server struct {
	Region    string `dynamo:"region"`
	Slot      int    `dynamo:"slot"`
	IP        net.IP `dynamo:"ip"`
	Observers int    `dynamo:"observers"`
	Chunks    int    `dynamo:"chunks,omitempty"`
	TTL       int64  `dynamo:"ttl,omitempty"`
}
