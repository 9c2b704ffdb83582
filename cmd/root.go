package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/isle/internal/models"
	"github.com/marcus/isle/internal/output"
	"github.com/marcus/isle/internal/storeclient"
	"github.com/marcus/isle/pkg/widget"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultServerURL = "http://localhost:8080"

var (
	version   string
	serverURL string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "isle",
	Short: "Collapsible to-do island for the terminal",
	Long: `isle - A collapsible to-do widget backed by a hosted store.

Run with no arguments to open the interactive island: a collapsed badge
showing remaining/completed counts that expands into a full panel for
adding, toggling and deleting items. Changes made elsewhere stream in
live over the store's change feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWidget()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds a store client for the configured server.
func newClient() *storeclient.Client {
	return storeclient.New(serverURL)
}

// runWidget opens the interactive island, subscribed to the change feed.
func runWidget() error {
	client := newClient()

	// The feed is best-effort: without it the widget still works, it just
	// won't see changes made by other clients.
	var (
		events    <-chan models.Change
		closeFeed func()
	)
	sub, err := client.Subscribe(context.Background())
	if err != nil {
		slog.Debug("change feed unavailable", "err", err)
	} else {
		events = sub.C
		closeFeed = sub.Close
	}

	m := widget.NewModel(client, events, closeFeed)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		output.Error("widget: %v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Store server URL (default $ISLE_SERVER or "+defaultServerURL+")")

	cobra.OnInitialize(bindEnvFlags)

	rootCmd.SetVersionTemplate("isle {{.Version}}\n")
}

// bindEnvFlags fills unset persistent flags from ISLE_<FLAG> env vars.
func bindEnvFlags() {
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		env := "ISLE_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v := os.Getenv(env); v != "" {
			f.Value.Set(v)
		}
	})
	if serverURL == "" {
		serverURL = defaultServerURL
	}
}
