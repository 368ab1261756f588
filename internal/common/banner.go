package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

var bannerArt = []string{
	` ___ _       ___                         `,
	`| __(_)_ _  / __| __ _ _ ___ ___ _ _    `,
	`| _|| | ' \ \__ \/ _| '_/ -_) -_) ' \   `,
	`|_| |_|_||_||___/\__|_| \___\___|_||_|  `,
}

// PrintBanner displays the startup banner to stderr and logs the same details.
func PrintBanner(config *Config, logger *Logger) {
	printBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("build", GetBuild()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Str("sentiment", config.Sentiment.Provider).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func printBanner(w io.Writer, config *Config) {
	textColor := banner.ColorBold + banner.ColorWhite
	hr := banner.ColorCyan + strings.Repeat("═", 64) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range bannerArt {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Fundamental Ratio Screening%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Sentiment", config.Sentiment.Provider},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset
	fmt.Fprintf(os.Stderr, "\n%s\n%s  FINSCREEN SHUTTING DOWN%s\n%s\n\n",
		hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)

	logger.Info().Msg("Application shutting down")
}
