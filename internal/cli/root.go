// Package cli implements the ingest admin commands.
package cli

import (
	"fmt"
	"os"

	"resolution-rag-be/internal/config"
	"resolution-rag-be/internal/pkg/logger"
	"resolution-rag-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var jsonOutput bool

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Resolution ingestion and retrieval tools",
	Long:  "Inspect resolution PDFs, index them into the vector store and run searches from the terminal.",
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.FgYellow)
	warn    = color.New(color.FgRed)
	ok      = color.New(color.FgGreen)
)

func loadConfig() *config.Config {
	return config.Load()
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}
	return database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
}

func cliLogger(cfg *config.Config) logger.ILogger {
	return logger.NewZapLogger(cfg.App.LogFilePath, false)
}

func exitErr(msg string, err error) {
	warn.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
