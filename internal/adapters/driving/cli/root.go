// Package cli provides the docsmith command line interface.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/ports/driving"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// verbose enables debug logging for the invocation.
var verbose bool

// queueWorker drains the index queue on demand or on an interval.
type queueWorker interface {
	Drain(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration) error
}

// Services holds everything the commands need. Any field may be nil;
// commands that need a missing service report it as not configured.
type Services struct {
	Settings       driving.SettingsService
	Documents      driving.DocumentService
	Generator      driving.Generator
	Validator      driving.Validator
	Templates      driving.TemplateService
	TemplateWriter driven.TemplateWriter
	Agent          driving.Agent
	Indexer        driving.Indexer
	Search         driving.SearchService
	Worker         queueWorker
	Scheduler      driving.Scheduler
}

var (
	settingsService driving.SettingsService
	documentService driving.DocumentService
	generator       driving.Generator
	validator       driving.Validator
	templateService driving.TemplateService
	templateWriter  driven.TemplateWriter
	agentService    driving.Agent
	indexer         driving.Indexer
	searchService   driving.SearchService
	indexWorker     queueWorker
	scheduler       driving.Scheduler
)

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	documentService = s.Documents
	generator = s.Generator
	validator = s.Validator
	templateService = s.Templates
	templateWriter = s.TemplateWriter
	agentService = s.Agent
	indexer = s.Indexer
	searchService = s.Search
	indexWorker = s.Worker
	scheduler = s.Scheduler
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Product document assistant",
	Long: `docsmith turns rough product ideas into structured product documents.

It checks an idea for completeness, generates documents section by section
from templates, derives engineering specs, analyses the impact of changes
across linked documents, and keeps documents in an external search index.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
