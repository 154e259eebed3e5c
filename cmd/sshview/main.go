package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"log"
	"os"

	"glyphstack/internal/assets"
	"glyphstack/internal/server"
)

const (
	defaultAddr = ":2222"
	hostKeyPath = "host_key"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	sheetPath := flag.String("sheet", "", "sprite sheet to serve (.toml or .json); built-in demo when empty")
	flag.Parse()

	// Generate host key if it doesn't exist
	if err := ensureHostKey(hostKeyPath); err != nil {
		log.Fatalf("Host key error: %v", err)
	}

	sheet := assets.DefaultSheet()
	if *sheetPath != "" {
		sh, err := assets.LoadSheet(*sheetPath)
		if err != nil {
			log.Fatalf("Failed to load sheet: %v", err)
		}
		sheet = sh
	}
	log.Printf("Sheet loaded: %s (%dx%d, %d sprites, %d actors)",
		sheet.Name, sheet.Renderer.Width, sheet.Renderer.Height, len(sheet.Sprites), len(sheet.Actors))

	listenAddr := defaultAddr
	if port := os.Getenv("PORT"); port != "" {
		listenAddr = ":" + port
	}
	sshServer, err := server.NewSSHServer(listenAddr, hostKeyPath, sheet)
	if err != nil {
		log.Fatalf("Invalid sheet: %v", err)
	}
	log.Printf("Starting glyphstack viewer, connect with: ssh -t -p %s localhost", listenAddr[1:])
	if err := sshServer.Start(); err != nil {
		log.Fatalf("SSH server error: %v", err)
	}
}

func ensureHostKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // key already exists
	}

	log.Println("Generating new host key...")
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
}
