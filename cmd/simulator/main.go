package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

var (
	webhookURL  = flag.String("webhook", "http://localhost:8080/api/v1/fulfillment", "Fulfillment webhook URL")
	sessionID   = flag.String("session", "", "Session id (random when empty)")
	timeout     = flag.Duration("timeout", 15*time.Second, "Per-turn timeout")
	interactive = flag.Bool("interactive", false, "Enable interactive mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

var demoScript = []string{
	"welcome",
	"new",
	"search forest",
	"play forest day",
	"current",
	"finished",
	"play zzz-nonexistent",
	"repeat",
}

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	simulator := NewSimulator(&SimulatorConfig{
		WebhookURL: *webhookURL,
		SessionID:  *sessionID,
		Timeout:    *timeout,
	}, os.Stdout, logger)

	if *interactive {
		runInteractiveMode(simulator)
		return
	}

	fmt.Printf("Ambience conversation simulator\n")
	fmt.Printf("  Webhook: %s\n", *webhookURL)
	fmt.Printf("  Session: %s\n\n", simulator.config.SessionID)
	simulator.RunScript(demoScript)
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nAmbience Conversation Simulator - Interactive Mode")
	fmt.Println("==================================================")
	fmt.Println("Commands:")
	fmt.Println("  welcome                 - Open the conversation")
	fmt.Println("  play <words>            - Play by title, genre or tag")
	fmt.Println("  search <words>          - Search the catalog")
	fmt.Println("  title|genre|tag <value> - Play a recognized entity")
	fmt.Println("  repeat                  - Replay the current track")
	fmt.Println("  current                 - Describe the current track")
	fmt.Println("  new                     - List the newest tracks")
	fmt.Println("  finished                - Report playback finished")
	fmt.Println("  help                    - Ask for help")
	fmt.Println("  bye                     - End the conversation")
	fmt.Println("  quit                    - Exit simulator")
	fmt.Println("")

	sim.RunInteractive(os.Stdin)
}
