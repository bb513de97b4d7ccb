package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	DefaultAppName        = "husrm"
	DefaultAppCMDShortCut = "husrm"
	// DefaultConfigPath is the directory searched for config.yaml after the working directory
	DefaultConfigPath       = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultGlobalConfigFile = filepath.Join(DefaultConfigPath, "config.yaml")
	DefaultEnvPrefix        = "HUSRM"

	// Default mining settings
	DefaultMinConfidence  = 0.5
	DefaultMinUtility     = 0.0
	DefaultMaxAntecedent  = 4
	DefaultMaxConsequent  = 4
	DefaultMaxSequences   = 0 // unlimited
	DefaultSetKind        = "bitvector"
	DefaultOutputFormat   = "text"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	MinUtilityEpsilon     = 0.001
	DefaultCompareWorkers = 4
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// NewLogger builds a logger writing to w at the given level.
// format is "json" or "console"; unknown levels fall back to info.
func NewLogger(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
