// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"errors"
	"github.com/SoftbearStudios/driftland/server/cloud/db"
	"github.com/SoftbearStudios/driftland/server/cloud/dns"
	"github.com/SoftbearStudios/driftland/server/cloud/fs"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	updatePeriod = 30 * time.Second

	// Snapshots are refreshed often, so they are barely cached.
	snapshotCacheSeconds = 10
	snapshotFilename     = "terrain.png"
)

var ErrNoSlot = errors.New("no empty server slot")

// Cloud registers the server in a slot of its region and publishes its state.
type Cloud struct {
	region     string
	serverSlot int
	ip         net.IP
	database   db.Database
	dns        dns.DNS
	fs         fs.Filesystem
}

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	builder.WriteString(cloud.region)
	builder.WriteByte(' ')
	builder.WriteString(strconv.Itoa(cloud.serverSlot))
	builder.WriteByte(' ')
	builder.WriteString(cloud.ip.String())
	builder.WriteByte(']')
	return builder.String()
}

// New discovers the instance's configuration from AWS and claims a slot.
func New() (*Cloud, error) {
	userData, err := loadUserData()
	if err != nil {
		return nil, err
	}

	ip, err := getPublicIP()
	if err != nil {
		return nil, err
	}
	session, err := getAWSSession(userData.Region)
	if err != nil {
		return nil, err
	}

	database, err := db.NewDynamoDBDatabase(session, userData.Stage)
	if err != nil {
		return nil, err
	}
	route53, err := dns.NewRoute53DNS(session, userData.Domain, userData.Route53ZoneID)
	if err != nil {
		return nil, err
	}
	s3, err := fs.NewS3Filesystem(session, userData.Stage)
	if err != nil {
		return nil, err
	}

	return Register(userData, ip, database, route53, s3)
}

// Register claims a slot in userData.Region for ip and points its route at it.
func Register(userData *UserData, ip net.IP, database db.Database, d dns.DNS, filesystem fs.Filesystem) (*Cloud, error) {
	cloud := &Cloud{
		region:   userData.Region,
		ip:       ip,
		database: database,
		dns:      d,
		fs:       filesystem,
	}

	servers, err := cloud.database.ReadServersByRegion(cloud.region)
	if err != nil {
		return nil, err
	}

	cloud.serverSlot = allocateSlot(servers, ip, userData.ServerSlots)
	if cloud.serverSlot == -1 {
		return nil, ErrNoSlot
	}

	err = cloud.dns.UpdateRoute(cloud.region, cloud.serverSlot, cloud.ip)
	if err != nil {
		return nil, err
	}

	err = cloud.UpdateServer(0)
	if err != nil {
		return nil, err
	}

	return cloud, nil
}

// allocateSlot reclaims ip's old slot, or else picks the lowest free one.
// Returns -1 if all are taken.
func allocateSlot(servers []db.Server, ip net.IP, slots int) int {
	for _, server := range servers {
		if ip.Equal(server.IP) {
			return server.Slot
		}
	}

scan:
	for slot := 0; slot < slots; slot++ {
		for _, server := range servers {
			if server.Slot == slot {
				// Slot is taken
				continue scan
			}
		}
		return slot
	}
	return -1
}

// UpdateServer refreshes the server's row. Call at least every UpdatePeriod.
func (cloud *Cloud) UpdateServer(observers int) error {
	return cloud.database.UpdateServer(db.Server{
		Region:    cloud.region,
		Slot:      cloud.serverSlot,
		IP:        cloud.ip,
		Observers: observers,
		TTL:       time.Now().Unix() + int64(updatePeriod/time.Second) + 5,
	})
}

func (cloud *Cloud) UploadTerrainSnapshot(data []byte) error {
	return cloud.fs.UploadStaticFile(cloud.region+"/"+strconv.Itoa(cloud.serverSlot)+"/"+snapshotFilename, snapshotCacheSeconds, data)
}

func (cloud *Cloud) UpdatePeriod() time.Duration {
	return updatePeriod
}
