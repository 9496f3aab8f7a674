package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monkquest/internal/config"
	"monkquest/internal/ui"
)

const Version = "0.1.0"

var (
	configPath string
	dbOverride string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "mq",
	Short:         "monkquest: local-first gamified task tracker",
	Long:          "monkquest turns tasks into quests: earn EXP, level up, keep your streak and survive Monk Mode.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if dbOverride != "" {
			c.DBPath = dbOverride
		}
		cfg = c
		return nil
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/monkquest/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "SQLite database path (overrides db_path)")

	rootCmd.AddCommand(
		newAddCmd(),
		newEditCmd(),
		newDoneCmd(),
		newRmCmd(),
		newStartCmd(),
		newStopCmd(),
		newRemindCmd(),
		newListCmd(),
		newHistoryCmd(),
		newStatusCmd(),
		newStatsCmd(),
		newProfileCmd(),
		newAvatarCmd(),
		newMonkCmd(),
		newGuildCmd(),
		newExportCmd(),
		newImportCmd(),
		newBoardCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
