package main

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"anilistapi/internal/mockupstream"
	"anilistapi/pkg/utils"
)

// mock-anilist answers the service's GraphQL queries from fixture files.
// Point the API at it with ANILIST_ENDPOINT=http://localhost:9000.
func main() {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:          "mock-anilist",
		Short:        "Serve canned AniList responses from a fixture directory",
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			log := utils.NewLogger(utils.LogConfig{Level: "debug"}, os.Stdout)
			log.WithFields(logrus.Fields{"addr": addr, "dir": dir}).Info("mock-anilist listening")
			return http.ListenAndServe(addr, mockupstream.New(dir, log))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9000", "listen address")
	cmd.Flags().StringVar(&dir, "dir", "data/mock", "fixture directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
