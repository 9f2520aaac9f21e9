package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// CLI is the interactive HTTP-client console for a running Toloka2Web server.
type CLI struct {
	rl      *readline.Instance
	running bool
	client  *Client
}

// Run connects to the server and starts the interactive loop.
func Run(serverURL string) {
	fmt.Printf("Toloka2Web CLI - Connecting to %s\n", serverURL)

	c, err := New(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the Toloka2Web server is running:")
		fmt.Println("     ./toloka2web")
		fmt.Println("  2. Or specify a different server:")
		fmt.Println("     ./toloka2web --cli --server http://your-server:5000")
		os.Exit(1)
	}

	c.Start()
}

// New creates a CLI instance after verifying server connectivity.
func New(serverURL string) (*CLI, error) {
	client := NewClient(serverURL)

	if err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLI{
		rl:      rl,
		running: true,
		client:  client,
	}, nil
}

// Start runs the CLI loop
func (c *CLI) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\nUse 'exit' or 'quit' to leave.")
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLI) printWelcome() {
	PrintBanner("Toloka2Web - CLI Mode")
	fmt.Println("\nType 'help' for available commands")
}

// handleCommand handles user command
func (c *CLI) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "login":
		c.handleLogin()
	case "releases", "rel":
		c.handleReleases(args)
	case "update":
		c.handleUpdate(args)
	case "search":
		c.handleSearch(args)
	case "toloka":
		c.handleToloka(args)
	case "settings", "set":
		c.handleSettings()
	case "sync":
		c.handleSync(args)
	case "exit", "quit", "q":
		c.running = false
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp displays help information
func (c *CLI) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"login", "Log in (interactive)"},
		{"", ""},
		{"RELEASES:", ""},
		{"releases", "List tracked releases"},
		{"update [codename]", "Update one release, or all ongoing when omitted"},
		{"", ""},
		{"SEARCH:", ""},
		{"search <query>", "Aggregated metadata search"},
		{"toloka <query>", "Tracker torrent search"},
		{"", ""},
		{"ADMIN:", ""},
		{"settings", "List application settings"},
		{"sync <settings|releases> <to-file|from-file>", "Run one INI sync pair"},
		{"", ""},
		{"SYSTEM:", ""},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Printf("  %-46s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Println()
		}
	}
}

func (c *CLI) handleLogin() {
	username, cancelled := c.readInput("Username")
	if cancelled || username == "" {
		fmt.Println("Cancelled.")
		return
	}
	password, cancelled := c.readPassword("Password")
	if cancelled {
		fmt.Println("Cancelled.")
		return
	}

	if err := c.client.Login(username, password); err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	fmt.Printf("Logged in as %s\n", username)
}

func (c *CLI) handleReleases(args []string) {
	releases, err := c.client.ListReleases()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(releases) == 0 {
		fmt.Println("No tracked releases.")
		return
	}

	fmt.Printf("  %-30s %-8s %-8s %-8s %s\n", "CODENAME", "SEASON", "EPISODE", "ONGOING", "TORRENT")
	for _, r := range releases {
		fmt.Printf("  %-30s %-8s %-8d %-8t %s\n",
			r.Section, r.SeasonNumber, r.EpisodeIndex, r.Ongoing, r.TorrentName)
	}
}

func (c *CLI) handleUpdate(args []string) {
	var err error
	if len(args) == 0 {
		result, e := c.client.UpdateAllReleases()
		if e == nil {
			fmt.Printf("Updated: %d, skipped: %d, errors: %d\n",
				len(result.Updated), len(result.Skipped), len(result.Errors))
		}
		err = e
	} else {
		result, e := c.client.UpdateRelease(args[0])
		if e == nil {
			if len(result.Updated) > 0 {
				fmt.Printf("Updated %s\n", args[0])
			} else {
				fmt.Printf("%s is already up to date\n", args[0])
			}
		}
		err = e
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func (c *CLI) handleSearch(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: search <query>")
		return
	}

	results, err := c.client.MultiSearch(strings.Join(args, " "))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	for _, r := range results {
		fmt.Printf("  [%-7s] %s (%s, %s)\n", r.Source, r.Title, r.MediaType, r.ReleaseDate)
	}
}

func (c *CLI) handleToloka(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: toloka <query>")
		return
	}

	result, err := c.client.TolokaSearch(strings.Join(args, " "))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if msg, ok := result["message"].(string); ok && result["error"] == true {
		fmt.Println(msg)
		return
	}
	fmt.Printf("%v\n", result)
}

func (c *CLI) handleSettings() {
	settings, err := c.client.ListSettings()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, s := range settings {
		fmt.Printf("  [%s] %s = %s\n", s.Section, s.Key, s.Value)
	}
}

func (c *CLI) handleSync(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: sync <settings|releases> <to-file|from-file>")
		return
	}

	if err := c.client.Sync(args[0], args[1]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Sync completed.")
}

// readInput reads a line with its own prompt, restoring the default after.
func (c *CLI) readInput(prompt string) (string, bool) {
	c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	line, err := c.rl.Readline()
	c.rl.SetPrompt("> ")

	if err != nil {
		if err == readline.ErrInterrupt {
			return "", true
		}
		return "", false
	}
	return strings.TrimSpace(line), false
}

// readPassword reads a password without echo.
func (c *CLI) readPassword(prompt string) (string, bool) {
	c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	line, err := c.rl.ReadPassword("")
	c.rl.SetPrompt("> ")

	if err != nil {
		if err == readline.ErrInterrupt {
			return "", true
		}
		return "", false
	}
	return string(line), false
}
