// Package main is a minimal interactive chat REPL over the unified content
// generation layer. It streams responses token-by-token, keeps the full
// conversation history, and works against any configured provider.
// Requires the provider's API key environment variable (for example
// GEMINI_API_KEY or OPENROUTER_API_KEY).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/ottaviano/genflow/genai"
	"github.com/ottaviano/genflow/observability"
	"github.com/ottaviano/genflow/observability/slogobs"
	"github.com/ottaviano/genflow/providers/gemini"
	"github.com/ottaviano/genflow/providers/openaicompat"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	providerName := flag.String("provider", "gemini", "provider: gemini, openrouter, deepseek, mistral, groq")
	modelName := flag.String("model", "gemini-2.5-flash", "model identifier")
	systemPrompt := flag.String("system", "", "optional system instruction")
	fallback := flag.Bool("fallback", false, "resolve the model through the fallback policy")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	generator, err := buildGenerator(*providerName)
	if err != nil {
		log.Fatalf("failed to create provider %q: %v", *providerName, err)
	}

	model := genai.ResolveModel(*modelName, *fallback)
	if model != *modelName {
		fmt.Printf("(model %s resolved to %s)\n", *modelName, model)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx := observability.ContextWithObserver(context.Background(), slogobs.New(logger))

	fmt.Printf("Chatting with %s via %s. Ctrl-D or \"exit\" to quit.\n\n", model, *providerName)

	var turns []genai.Turn
	stdin := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(stdin.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return
		}

		turns = append(turns, genai.Turn{Role: genai.RoleUser, Parts: []genai.Part{genai.TextPart(input)}})

		request := &genai.GenerateRequest{
			Model:             model,
			Turns:             turns,
			SystemInstruction: *systemPrompt,
		}

		stream, err := generator.GenerateContentStream(ctx, request)
		if err != nil {
			fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
			turns = turns[:len(turns)-1]
			continue
		}

		final, err := printStream(stream)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nstream failed: %v\n", err)
			turns = turns[:len(turns)-1]
			continue
		}

		turns = append(turns, genai.Turn{Role: genai.RoleModel, Parts: final.Parts})

		if final.Usage != nil {
			fmt.Printf("\n(%d tokens, finish: %s)\n\n", final.Usage.TotalTokens, final.FinishReason)
		} else {
			fmt.Print("\n\n")
		}
	}
}

// printStream prints each snapshot's newly generated text as it arrives.
// Snapshots are cumulative, so the diff against what was already printed is
// the new fragment.
func printStream(stream *genai.Stream) (*genai.GenerateResponse, error) {
	printed := 0
	var final *genai.GenerateResponse

	for response, err := range stream.Iter() {
		if err != nil {
			return final, err
		}
		text := response.Text()
		if len(text) > printed {
			fmt.Print(text[printed:])
			printed = len(text)
		}
		final = response
	}

	if final == nil {
		return nil, fmt.Errorf("stream produced no response")
	}
	return final, nil
}

// buildGenerator constructs the adapter for the named provider, pulling the
// API key from the provider's conventional environment variable.
func buildGenerator(name string) (genai.ContentGenerator, error) {
	switch name {
	case "gemini":
		return gemini.New(gemini.Config{APIKey: os.Getenv("GEMINI_API_KEY")})
	case "openrouter":
		return openaicompat.New(openaicompat.OpenRouter, openaicompat.Config{APIKey: os.Getenv("OPENROUTER_API_KEY")})
	case "deepseek":
		return openaicompat.New(openaicompat.DeepSeek, openaicompat.Config{APIKey: os.Getenv("DEEPSEEK_API_KEY")})
	case "mistral":
		return openaicompat.New(openaicompat.Mistral, openaicompat.Config{APIKey: os.Getenv("MISTRAL_API_KEY")})
	case "groq":
		return openaicompat.New(openaicompat.Groq, openaicompat.Config{APIKey: os.Getenv("GROQ_API_KEY")})
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
