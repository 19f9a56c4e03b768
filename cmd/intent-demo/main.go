package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"smartride/internal/ai"
	"smartride/internal/modules/intent"
)

func main() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	utterance := "Book a ride to the office tomorrow at 9am"
	if len(os.Args) > 1 {
		utterance = strings.Join(os.Args[1:], " ")
	}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	fmt.Printf("User: %s\n", utterance)

	result, err := intent.NewService(provider).Parse(ctx, utterance)
	if err != nil {
		log.Fatalf("Error parsing intent: %v", err)
	}

	if result.NeedsClarification {
		fmt.Printf("Needs clarification: %s\n", result.Question)
		return
	}

	bi := result.Intent
	fmt.Printf("Action: %s\n", bi.Action)
	if bi.Destination != nil {
		fmt.Printf("Destination: %s\n", bi.Destination.Label)
	}
	if bi.Origin != nil {
		fmt.Printf("Origin: %s\n", bi.Origin.Label)
	}
	if bi.RequestedTime != nil {
		fmt.Printf("Time: %s\n", bi.RequestedTime)
	}
	fmt.Printf("Constraint: %s\n", bi.Constraint)
}
