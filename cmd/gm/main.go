// Command gm is an interactive Game Master console. It drives a game on
// a running server: every line typed becomes a GM prompt, and the
// party's reactions print as they resolve.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"github.com/thisisjofrank/LLM-GM-Practice/client"
	"github.com/thisisjofrank/LLM-GM-Practice/domain"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerAddr string `envconfig:"GM_SERVER_ADDR" default:"http://localhost:8000"`
	Party      string `envconfig:"GM_PARTY" default:"default"`
	Scenario   string `envconfig:"GM_SCENARIO" default:"classic"`
	// GM_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"GM_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "GM console error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.ServerAddr)

	status, err := api.LLMStatus(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("server unreachable at %s: %w", cfg.ServerAddr, err)
	}
	fmt.Printf("Connected. Responder: %s (available: %v)\n", status.Provider, status.Available)

	gameID, err := api.StartPreset(ctx, cfg.Party, cfg.Scenario)
	if err != nil {
		return exitRuntime, fmt.Errorf("start game: %w", err)
	}

	snapshot, err := api.GameStatus(ctx, gameID)
	if err != nil {
		return exitRuntime, err
	}
	printMessages(cfg, snapshot.Messages)
	fmt.Println("\nType a prompt for the party, or /status, /end, /quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("GM> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return exitOK, nil
		case line == "/end":
			if err := api.EndGame(ctx, gameID); err != nil {
				fmt.Println("end failed:", err)
				continue
			}
			fmt.Println("Game ended.")
			return exitOK, nil
		case line == "/status":
			snapshot, err := api.GameStatus(ctx, gameID)
			if err != nil {
				fmt.Println("status failed:", err)
				continue
			}
			printStatus(snapshot)
		default:
			before := len(snapshot.Messages)
			snapshot, err = api.SubmitPrompt(ctx, gameID, line)
			if err != nil {
				fmt.Println("prompt failed:", err)
				continue
			}
			// Print only what this turn added, GM line included.
			printMessages(cfg, snapshot.Messages[before:])
		}
	}
	return exitOK, scanner.Err()
}

func printMessages(cfg Config, messages []domain.Message) {
	for _, msg := range messages {
		line := fmt.Sprintf("%s: %s", msg.Speaker, msg.Content)
		if cfg.Colours {
			switch msg.Kind {
			case domain.KindGM:
				line = color.New(color.FgYellow).Render(line)
			case domain.KindCharacter:
				line = color.New(color.FgCyan).Render(line)
			default:
				line = color.New(color.FgGray).Render(line)
			}
		}
		fmt.Println(line)
	}
}

func printStatus(snapshot domain.Snapshot) {
	fmt.Printf("Game %s | turn %d | active: %v\n", snapshot.ID, snapshot.CurrentTurn, snapshot.Active)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Class", "Memory"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, character := range snapshot.Characters {
		table.Append([]string{character.Name, character.Class, fmt.Sprintf("%d", character.MemorySize)})
	}
	table.Render()
}
