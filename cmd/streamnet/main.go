// Command streamnet runs the functional aquatic connectivity pipeline over
// one or more hydrographic regions laid out on disk.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "streamnet",
		Short:         "Functional aquatic connectivity analysis for barrier-fragmented stream networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(log))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
