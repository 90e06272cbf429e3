// Command llm-check verifies OpenAI connectivity with the same classifier
// and assistant the chat service uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/llm"
)

func main() {
	apiKey := flag.String("key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	model := flag.String("model", "gpt-4o", "OpenAI model")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

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

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "ERROR: OPENAI_API_KEY not set and no --key flag provided\n")
		fmt.Fprintf(os.Stderr, "Usage: llm-check --key sk-... [--model gpt-4o] [--timeout 30s]\n")
		os.Exit(1)
	}

	fmt.Println("=== LLM Connection Check ===")
	fmt.Println("Configuration:")
	fmt.Printf("  Model: %s\n", *model)
	fmt.Printf("  API key length: %d chars\n", len(*apiKey))
	if len(*apiKey) >= 4 {
		fmt.Printf("  API key prefix: %s...\n", (*apiKey)[:4])
	}
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	assistant := llm.NewAssistant(*apiKey, *model, logger)

	fmt.Println("Sending a policy question through the assistant...")
	start := time.Now()
	answer, err := assistant.AnswerPolicy(ctx, "How many days of annual leave do employees get?")
	duration := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ ERROR: OpenAI API call failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Possible causes:\n")
		fmt.Fprintf(os.Stderr, "  1. Invalid or expired OPENAI_API_KEY\n")
		fmt.Fprintf(os.Stderr, "  2. Network connectivity issue\n")
		fmt.Fprintf(os.Stderr, "  3. API quota exceeded\n")
		fmt.Fprintf(os.Stderr, "  4. API service unavailable\n")
		os.Exit(1)
	}

	fmt.Println("✓ Received assistant response")
	fmt.Printf("API response time: %v\n", duration)
	fmt.Printf("Answer: %s\n\n", answer)

	classifier := llm.NewClassifier(*apiKey, *model, logger)

	fmt.Println("Classifying a sample query...")
	label, confidence := classifier.Classify(ctx, "I want to take next Thursday off", false)
	fmt.Printf("Intent: %s (confidence %.2f)\n", label, confidence)
	if label == llm.IntentGeneral && confidence == 0 {
		fmt.Fprintln(os.Stderr, "❌ Classifier fell back to the default intent, check the logs above")
		os.Exit(1)
	}

	fmt.Println("\n✅ LLM connection check PASSED")
}
