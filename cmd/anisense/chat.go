package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
)

// ChatCmd runs an interactive recommendation chat on the terminal.
type ChatCmd struct {
	Model   string `help:"Model name."`
	APIKey  string `name:"api-key" help:"Model API key (defaults to OPENAI_API_KEY)."`
	BaseURL string `name:"base-url" help:"Custom model API base URL."`
	Tags    string `help:"Path to the tag snapshot file." type:"path"`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	(&ServeCmd{Model: c.Model, APIKey: c.APIKey, BaseURL: c.BaseURL, Tags: c.Tags}).applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sess, _, err := buildSession(cfg)
	if err != nil {
		return err
	}

	fmt.Println("Anime Recommendation Chat")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Starting up... this launches the AniList tool server.")

	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() { _ = sess.Stop() }()

	fmt.Println("Ready. Type your anime requests below.")
	fmt.Println("Examples:")
	fmt.Println("  - anime like Attack on Titan")
	fmt.Println("  - romantic comedy anime")
	fmt.Println("Commands: 'clear' resets context, 'prefs' shows learned preferences, 'quit' exits.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Println("Please enter your anime request.")
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "bye", "stop":
			fmt.Println("Goodbye!")
			return nil
		case "clear":
			sess.Reset()
			fmt.Println("Conversation context cleared.")
			continue
		case "prefs":
			printPreferences(sess.Preferences())
			continue
		}

		reply, err := sess.Recommend(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		fmt.Printf("Bot: %s\n\n", reply)

		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func printPreferences(prefs map[string]bool) {
	if len(prefs) == 0 {
		fmt.Println("No preferences learned yet.")
		return
	}
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Learned preferences:")
	for _, k := range keys {
		label := strings.ReplaceAll(k, "_", " ")
		fmt.Printf("  - %s: %v\n", label, prefs[k])
	}
}
