// Package main provides the CSP message inspection tool and HTTP API server
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZentaChain/zentalk-csp/pkg/config"
	"github.com/ZentaChain/zentalk-csp/pkg/inspect/api"
	"github.com/ZentaChain/zentalk-csp/pkg/message"
	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

var (
	envFile    = flag.String("env", "", "Env file to load (default ./.env if present)")
	port       = flag.Int("port", 8080, "HTTP API port")
	enableCORS = flag.Bool("cors", true, "Enable CORS headers")
	rateLimit  = flag.Int("rate-limit", 100, "Rate limit (requests per minute, 0 disables)")
	containerH = flag.String("hex", "", "Decode a hex encoded decrypted container and exit")
	typeName   = flag.String("type", "", "Decode a body of this message type (name or code) and exit")
	payloadH   = flag.String("payload", "", "Hex encoded unpadded body for -type (empty for content-free types)")
)

func main() {
	flag.Parse()

	if *containerH != "" || *typeName != "" {
		if err := decodeOnce(os.Stdout, *containerH, *typeName, *payloadH); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	serve()
}

func loadConfig() *config.Config {
	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Explicit flags override the environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "cors":
			cfg.EnableCORS = *enableCORS
		case "rate-limit":
			cfg.RateLimit = *rateLimit
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func serve() {
	fmt.Println("🚀 CSP Message Inspection API")
	fmt.Println("=============================")
	fmt.Println()

	cfg := loadConfig()

	apiServer, err := api.NewServer(cfg.API())
	if err != nil {
		log.Fatalf("Failed to create API server: %v", err)
	}

	fmt.Printf("  Message types: %d\n", len(protocol.AllMessageTypes()))
	fmt.Printf("  Rate limit:    %d/min\n", cfg.RateLimit)
	fmt.Printf("  Max body:      %d KB\n", cfg.MaxBodySizeKB)
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := apiServer.Start(ctx); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	fmt.Println("API Endpoints:")
	fmt.Printf("  GET    http://localhost:%d/api/v1/types\n", cfg.Port)
	fmt.Printf("  GET    http://localhost:%d/api/v1/types/:type\n", cfg.Port)
	fmt.Printf("  POST   http://localhost:%d/api/v1/messages/decode\n", cfg.Port)
	fmt.Printf("  GET    http://localhost:%d/health\n", cfg.Port)
	fmt.Println()

	// Wait for interrupt signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
		<-done
	case <-done:
	}

	fmt.Println("👋 Goodbye!")
}

type decodeOutput struct {
	Type       protocol.MessageType `json:"type"`
	Flags      string               `json:"flags"`
	Properties message.Properties   `json:"properties"`
	Body       message.Body         `json:"body"`
}

// decodeOnce decodes either a hex container or a hex body of typeName and
// writes the result as indented JSON.
func decodeOnce(w io.Writer, containerHex, typeName, payloadHex string) error {
	var (
		body    message.Body
		msgType protocol.MessageType
	)

	if containerHex != "" {
		if typeName != "" || payloadHex != "" {
			return fmt.Errorf("-hex cannot be combined with -type or -payload")
		}
		raw, err := hex.DecodeString(containerHex)
		if err != nil {
			return fmt.Errorf("invalid -hex: %w", err)
		}
		var payload []byte
		if msgType, payload, err = protocol.ParseContainer(raw); err != nil {
			return err
		}
		if body, err = message.Decode(msgType, payload); err != nil {
			return err
		}
	} else {
		var err error
		if msgType, err = protocol.ParseMessageType(typeName); err != nil {
			return fmt.Errorf("invalid -type: %w", err)
		}
		payload, err := hex.DecodeString(payloadHex)
		if err != nil {
			return fmt.Errorf("invalid -payload: %w", err)
		}
		if body, err = message.Decode(msgType, payload); err != nil {
			return err
		}
	}

	props := message.PropertiesOf(body)
	out, err := json.MarshalIndent(decodeOutput{
		Type:       msgType,
		Flags:      fmt.Sprintf("0x%02x", props.Flags()),
		Properties: props,
		Body:       body,
	}, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}
