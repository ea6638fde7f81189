// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the deepchat CLI.
//
// Handles the "deepchat chat" command which provides an interactive
// REPL for conversing with the local model, with input history and
// line editing.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   deepchat chat                       Start interactive chat (default model)
//   deepchat chat --model qwen2.5:14b   Use specific model
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history (asks to confirm)
//   /model [name]       Show or switch model (switch clears history)
//   /models             List installed models
//   /temp VALUE         Set sampling temperature
//   /ctx VALUE          Set context length
//   /status, /s         Show session statistics
//   /history            Show conversation history
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/morganforge/deepchat/internal/config"
	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ollama"
	"github.com/morganforge/deepchat/internal/session"
	"github.com/morganforge/deepchat/internal/ui/styles"
	"github.com/morganforge/deepchat/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	cli.LoadHistory()

	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatREPL holds the state for an interactive chat session.
type ChatREPL struct {
	Controller *session.Controller
	Client     *ollama.Client
	Config     *config.Config
	Quiet      bool

	StartTime   time.Time
	TotalTokens int

	// Cancel function for the in-flight stream, nil when idle.
	CancelFunc context.CancelFunc

	InputCLI *ChatCLI
}

// HandleChatCommand handles the interactive "chat" command.
func HandleChatCommand(args Args) error {
	cfg, client := loadEnvironment(args)

	store := conversation.NewStore()
	store.SetParameters(cfg.Generation.Temperature, cfg.Generation.ContextLength)

	repl := &ChatREPL{
		Client:    client,
		Config:    cfg,
		Quiet:     args.Quiet,
		StartTime: time.Now(),
		InputCLI:  NewChatCLI(),
	}
	defer repl.InputCLI.Close()

	var printed int
	repl.Controller = session.NewController(session.Config{
		Store:        store,
		Client:       client,
		DefaultModel: cfg.Ollama.DefaultModel,
		OnDelta: func(accumulated string) {
			fmt.Print(accumulated[printed:])
			printed = len(accumulated)
		},
	})

	// First Ctrl+C cancels the current generation; at the prompt liner
	// reports it as ErrPromptAborted instead.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if repl.CancelFunc != nil {
				repl.CancelFunc()
				repl.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	printWelcome(repl)

	// Main REPL loop using liner for input history
	for {
		input, err := repl.InputCLI.ReadInput(promptStyle.Render("deepchat> "))
		if err != nil {
			// Ctrl+C at the prompt, EOF (Ctrl+D), or a read error all
			// end the session gracefully.
			fmt.Println()
			printExitSummary(repl)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, repl)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n",
					errorStyle.Render("[Error]"),
					err)
			}
			if !shouldContinue {
				printExitSummary(repl)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(repl)
			return nil
		}

		printed = 0
		if err := processPrompt(repl, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n",
				errorStyle.Render("[Error]"),
				err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processPrompt streams one reply to stdout and records its stats.
func processPrompt(repl *ChatREPL, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	repl.CancelFunc = cancel
	defer func() {
		repl.CancelFunc = nil
		cancel()
	}()

	fmt.Println()

	if err := repl.Controller.SubmitPrompt(ctx, input); err != nil {
		return err
	}

	fmt.Println()

	history := repl.Controller.Store().History()
	if len(history) == 0 {
		return nil
	}
	reply := history[len(history)-1]
	repl.TotalTokens += reply.TokenCount

	if !repl.Quiet && reply.TokenCount > 0 {
		fmt.Println(statsStyle.Render(formatReplyStats(reply)))
	}
	fmt.Println()

	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, repl *ChatREPL) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		return handleClearCommand(repl)

	case "/model", "/m":
		return handleModelCommand(repl, args)

	case "/models":
		printModelList(repl)
		return true, nil

	case "/temp", "/temperature":
		return handleTempCommand(repl, args)

	case "/ctx", "/context":
		return handleCtxCommand(repl, args)

	case "/status", "/s":
		printStatus(repl)
		return true, nil

	case "/history":
		printHistory(repl)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleClearCommand runs the clear confirmation workflow.
func handleClearCommand(repl *ChatREPL) (bool, error) {
	store := repl.Controller.Store()
	if store.IsEmpty() {
		fmt.Println(infoStyle.Render("[Nothing to clear]"))
		return true, nil
	}

	if err := repl.Controller.RequestClear(); err != nil {
		return true, err
	}

	count := store.MessageCount()
	prompt := fmt.Sprintf("Clear %d %s? [y/N] ", count, util.Pluralize(count, "message", "messages"))
	if confirmPrompt(repl, prompt) {
		repl.Controller.Confirm()
		fmt.Println(commandStyle.Render("[Conversation cleared]"))
	} else {
		repl.Controller.Cancel()
		fmt.Println(infoStyle.Render("[Kept conversation]"))
	}

	return true, nil
}

// handleModelCommand handles the /model command.
func handleModelCommand(repl *ChatREPL, args []string) (bool, error) {
	store := repl.Controller.Store()

	if len(args) == 0 {
		model := store.ActiveModel()
		if model == "" {
			model = repl.Config.Ollama.DefaultModel
		}
		fmt.Printf("%s Current model: %s\n",
			infoStyle.Render("[Model]"),
			commandStyle.Render(model))
		return true, nil
	}

	newModel := args[0]

	// Warn when the model is not installed, but let the user proceed;
	// Ollama will surface the real error on the next request.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	names := repl.Client.ModelNames(ctx)
	cancel()
	if len(names) > 0 && !containsString(names, newModel) {
		fmt.Fprintf(os.Stderr, "%s Model '%s' not found locally, will attempt to use anyway\n",
			warningStyle.Render("[Warning]"),
			newModel)
	}

	if err := repl.Controller.SelectModel(newModel); err != nil {
		return true, err
	}

	// Switching mid-conversation discards history, so it needs the
	// same confirmation the TUI asks for.
	if repl.Controller.State() == session.StateAwaitingSwitchConfirm {
		prompt := fmt.Sprintf("Switching to %s clears the conversation. Continue? [y/N] ", newModel)
		if confirmPrompt(repl, prompt) {
			repl.Controller.Confirm()
		} else {
			repl.Controller.Cancel()
			fmt.Println(infoStyle.Render("[Kept current model]"))
			return true, nil
		}
	}

	fmt.Printf("%s Switched to model: %s\n",
		commandStyle.Render("[OK]"),
		newModel)

	return true, nil
}

// handleTempCommand sets the sampling temperature.
func handleTempCommand(repl *ChatREPL, args []string) (bool, error) {
	store := repl.Controller.Store()

	if len(args) == 0 {
		fmt.Printf("%s Temperature: %.2f\n",
			infoStyle.Render("[Generation]"),
			store.Temperature())
		return true, nil
	}

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return true, fmt.Errorf("invalid temperature: %s", args[0])
	}

	store.SetParameters(value, store.ContextLength())
	fmt.Printf("%s Temperature set to %.2f\n",
		commandStyle.Render("[OK]"),
		store.Temperature())

	return true, nil
}

// handleCtxCommand sets the context length.
func handleCtxCommand(repl *ChatREPL, args []string) (bool, error) {
	store := repl.Controller.Store()

	if len(args) == 0 {
		fmt.Printf("%s Context length: %d\n",
			infoStyle.Render("[Generation]"),
			store.ContextLength())
		return true, nil
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		return true, fmt.Errorf("invalid context length: %s", args[0])
	}

	store.SetParameters(store.Temperature(), value)
	fmt.Printf("%s Context length set to %d\n",
		commandStyle.Render("[OK]"),
		store.ContextLength())

	return true, nil
}

// confirmPrompt asks a yes/no question; anything but y/yes is no.
func confirmPrompt(repl *ChatREPL, prompt string) bool {
	answer, err := repl.InputCLI.line.Prompt(warningStyle.Render(prompt))
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(repl *ChatREPL) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("deepchat interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(repl.Config.Ollama.DefaultModel))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Backend:"),
		commandStyle.Render(repl.Config.Ollama.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err := repl.Client.CheckRunning(ctx)
	cancel()
	if err != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Status:"),
			warningStyle.Render("Ollama not reachable (start it with `ollama serve`)"))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Status:"),
			commandStyle.Render("Connected"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear conversation history"},
		{"/model [name]", "Show or switch model"},
		{"/models", "List installed models"},
		{"/temp VALUE", "Set sampling temperature (0.0 - 1.0)"},
		{"/ctx VALUE", "Set context length (512 - 8192)"},
		{"/status, /s", "Show session statistics"},
		{"/history", "Show conversation history"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
}

// printModelList prints the installed models.
func printModelList(repl *ChatREPL) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	names := repl.Client.ModelNames(ctx)
	cancel()

	if len(names) == 0 {
		fmt.Println(warningStyle.Render("[No models found - is Ollama running?]"))
		return
	}

	active := repl.Controller.Store().ActiveModel()
	if active == "" {
		active = repl.Config.Ollama.DefaultModel
	}

	fmt.Println()
	for _, name := range names {
		marker := "  "
		if name == active {
			marker = commandStyle.Render("* ")
		}
		fmt.Printf("%s%s\n", marker, name)
	}
	fmt.Println()
}

// printStatus shows session statistics.
func printStatus(repl *ChatREPL) {
	store := repl.Controller.Store()
	elapsed := time.Since(repl.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))

	model := store.ActiveModel()
	if model == "" {
		model = repl.Config.Ollama.DefaultModel
	}

	rows := []struct {
		label string
		value string
	}{
		{"Model", model},
		{"Messages", strconv.Itoa(store.MessageCount())},
		{"Temperature", strconv.FormatFloat(store.Temperature(), 'f', 2, 64)},
		{"Context length", strconv.Itoa(store.ContextLength())},
		{"Tokens generated", strconv.Itoa(repl.TotalTokens)},
		{"Session time", elapsed.String()},
	}
	for _, r := range rows {
		fmt.Printf("  %s %s\n",
			infoStyle.Render(fmt.Sprintf("%-17s", r.label+":")),
			commandStyle.Render(r.value))
	}
	fmt.Println()
}

// printHistory shows the conversation so far.
func printHistory(repl *ChatREPL) {
	history := repl.Controller.Store().History()
	if len(history) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	for _, msg := range history {
		label := msg.Role.DisplayName()
		if msg.Role == conversation.RoleAssistant && msg.Model != "" {
			label += " (" + msg.Model + ")"
		}
		fmt.Printf("%s %s\n",
			summaryHeaderStyle.Render(label+":"),
			msg.Preview(200))
	}
	fmt.Println()
}

// printExitSummary prints a summary on session exit.
func printExitSummary(repl *ChatREPL) {
	if repl.Quiet {
		return
	}

	count := repl.Controller.Store().MessageCount()
	elapsed := time.Since(repl.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Printf("%s %d %s, %d tokens, %s\n",
		infoStyle.Render("Session:"),
		count,
		util.Pluralize(count, "message", "messages"),
		repl.TotalTokens,
		elapsed)
	fmt.Println(infoStyle.Render("Goodbye."))
}
