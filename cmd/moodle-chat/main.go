package main

import (
	"context"
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/pascalhuerten/moodle-rag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		apiURL      string
		courseID    string
		userContext string
		timeout     time.Duration
	)
	flag.StringVar(&apiURL, "api", "http://localhost:8000", "Base URL of the moodle-rag API")
	flag.StringVar(&courseID, "course", "", "Course ID sent with every message")
	flag.StringVar(&userContext, "context", "", "User context sent with every message")
	flag.DurationVar(&timeout, "timeout", tui.DefaultTimeout, "Timeout per chat request")
	flag.Parse()

	client := tui.NewClient(apiURL, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	ready, err := client.Ready(ctx)
	cancel()
	if err != nil {
		log.Fatalf("API not reachable at %s: %v", apiURL, err)
	}
	if !ready {
		log.Printf("Index is still loading, answers will fail until it is ready")
	}

	m := tui.New(client, courseID, userContext)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
