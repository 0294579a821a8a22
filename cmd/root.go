// Package cmd defines the command-line interface.
package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/app"
	"github.com/nhle/adchat/internal/credential"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/store"
	"github.com/nhle/adchat/internal/ui/setup"
)

var (
	cfgFile string
	dbFile  string
)

var rootCmd = &cobra.Command{
	Use:   "adchat",
	Short: "Terminal client for the university admissions assistant",
	Long: `adchat is a terminal client for the university admissions site:
an AI advisory chat with document citations and file upload, a floating
chat widget with a persistent local history, and a notification center
kept fresh by background polling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", model.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(
		&dbFile, "db", model.DefaultDBPath(), "chat history database path")
}

// run loads the configuration, opens the history store, and starts the
// terminal UI.
func run() error {
	cfg, err := model.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(dbFile)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer s.Close()

	client := api.NewClient(
		cfg.Server.BaseURL,
		loadToken(),
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
	)

	p := tea.NewProgram(
		app.New(cfg, cfgFile, client, s),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// loadToken reads the session token from the environment, falling back
// to the system keyring. An empty token sends the app to the setup form.
func loadToken() string {
	if token := os.Getenv("ADCHAT_TOKEN"); token != "" {
		return token
	}

	token, err := credential.Get(setup.TokenKey)
	if err != nil {
		return ""
	}
	return token
}
