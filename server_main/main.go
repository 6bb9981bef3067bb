// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"github.com/SoftbearStudios/driftland/server"
	"github.com/SoftbearStudios/driftland/server/cloud"
	"github.com/SoftbearStudios/driftland/server/terrain"
	"golang.org/x/net/netutil"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
)

func main() {
	var (
		bots           int
		configFile     string
		port           int
		maxConnections int
		verbose        bool
	)

	flag.IntVar(&bots, "bots", 1, "minimum number of clients, topped up with bots")
	flag.StringVar(&configFile, "config", "", "terrain config `file` (YAML)")
	flag.IntVar(&port, "port", 8192, "http service port")
	flag.IntVar(&maxConnections, "max-connections", 256, "maximum number of inbound TCP connections")
	flag.BoolVar(&verbose, "verbose", false, "log terrain rotations")
	flag.Parse()

	if bots < 0 {
		log.Fatal("invalid argument bots: ", bots)
	}

	cfg, err := terrain.LoadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	var c server.Cloud

	c, err = cloud.New()
	if err != nil {
		// Cloud is not required for server to function, just log an error
		log.Printf("Cloud error: %v\n", err)

		c = server.Offline{}
	}

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stdout, "terrain ", log.LstdFlags)
	}

	hub, err := server.NewHub(server.HubOptions{
		Cloud:      c,
		Config:     cfg,
		MinClients: bots,
		Logger:     logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	go hub.Run()

	if port < 0 {
		log.Println("driftland simulation started")
		// Block forever
		<-make(chan struct{})
	}

	log.Printf("driftland server started on http://localhost:%d\n", port)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/terrain.png", hub.ServeSnapshot)
	http.HandleFunc("/ws", hub.ServeSocket)

	l, err := net.Listen("tcp", fmt.Sprint(":", port))

	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, maxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
