package main

import (
	"flag"
	"log"
	"os"

	"github.com/user/portaltracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	workers := flag.Int("workers", 0, "Render workers per request; 0 selects the CPU count")
	flag.Parse()

	webServer := server.NewServer(*port, *workers)

	log.Printf("Portal Tracer snapshot server")
	log.Printf("Try http://localhost:%d/render?time=0.25", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
