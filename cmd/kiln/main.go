package main

import (
	"log"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Coverage-guided fuzzing engine",
	Long: `kiln runs a coverage-guided fuzzing campaign against an in-process target.

Each worker owns its own corpus, state and executor; workers share new
testcases through an in-process hub. Progress is exposed over HTTP and
recorded in a SQLite catalog so a campaign can resume after a restart.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kiln version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("kiln " + version)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("kiln: %v", err)
	}
}
