// Command docsmith is the product document assistant.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docsmith/internal/adapters/driven/ai"
	"github.com/custodia-labs/docsmith/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsmith/internal/adapters/driven/search/inkeep"
	"github.com/custodia-labs/docsmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsmith/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsmith/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsmith/internal/core/domain"
	"github.com/custodia-labs/docsmith/internal/core/ports/driven"
	"github.com/custodia-labs/docsmith/internal/core/services"
	"github.com/custodia-labs/docsmith/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cleanup, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	err = cli.Execute()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// stores groups the persistence ports of one backend.
type stores struct {
	docs      driven.DocumentStore
	queue     driven.IndexQueue
	scheduler driven.SchedulerStore
	templates driven.TemplateSource
	writer    driven.TemplateWriter
	close     func()
}

// wire builds every service and installs them into the CLI. It runs before
// flags are parsed, so degraded setup is reported with logger.Error.
// The returned func releases open resources.
func wire() (func(), error) {
	configDir, err := file.DefaultDir()
	if err != nil {
		return nil, err
	}
	if loaded, err := file.LoadEnv(file.DefaultEnvFiles(configDir)...); err != nil {
		logger.Error("loading .env: %v", err)
	} else if len(loaded) > 0 {
		logger.Debug("loaded env files: %v", loaded)
	}

	var configStore driven.ConfigStore
	if fs, err := file.NewConfigStore(configDir); err != nil {
		logger.Error("config file unavailable, settings will not persist: %v", err)
		configStore = memory.NewConfigStore(nil)
	} else {
		configStore = fs
	}

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	st, err := openStores(settings, configDir)
	if err != nil {
		return nil, err
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		// Commands that need the model report it as unavailable.
		logger.Error("LLM disabled: %v", err)
		llm = nil
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), services.DefaultPrompts())
	if err != nil {
		logger.Error("prompt files unavailable, using built-in prompts: %v", err)
	}

	templates := services.NewTemplateStore(st.templates)
	validator := services.NewValidator()

	generator := services.NewGenerator(llm, templates, services.GeneratorConfigFrom(settings))
	agent := services.NewAgent(llm, validator, templates, services.AgentConfigFrom(settings))
	if prompts != nil {
		generator.SetPromptStore(prompts)
		agent.SetPromptStore(prompts)
	}

	index := inkeep.NewClientFromSettings(settings.Index)
	indexer := services.NewIndexer(st.docs, index, st.queue, settings.Index.OnCreate)
	worker := services.NewIndexWorker(st.queue, st.docs, indexer)

	cli.SetServices(&cli.Services{
		Settings:       settingsSvc,
		Documents:      services.NewDocumentService(st.docs, templates, indexer),
		Generator:      generator,
		Validator:      validator,
		Templates:      templates,
		TemplateWriter: st.writer,
		Agent:          agent,
		Indexer:        indexer,
		Search:         services.NewSearchService(st.docs, index),
		Worker:         worker,
		Scheduler:      services.NewScheduler(domain.DefaultSchedulerConfig(), st.scheduler, indexer, worker),
	})

	return func() {
		if llm != nil {
			_ = llm.Close()
		}
		st.close()
	}, nil
}

// openStores opens the configured storage backend. Imported templates are
// layered over the template files, which fall back to the built-ins.
func openStores(settings *domain.AppSettings, configDir string) (*stores, error) {
	templatesDir := settings.TemplatesDir
	if templatesDir == "" {
		templatesDir = filepath.Join(configDir, "templates")
	}
	fileTemplates := file.NewTemplateSource(templatesDir)

	if settings.Storage.Backend == domain.StorageMemory {
		return &stores{
			docs:      memory.NewDocumentStore(),
			queue:     memory.NewIndexQueue(),
			scheduler: memory.NewSchedulerStore(),
			templates: fileTemplates,
			writer:    fileTemplates,
			close:     func() {},
		}, nil
	}

	db, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	logger.Debug("using database %s", db.Path())

	imported := db.TemplateStore()
	return &stores{
		docs:      db.DocumentStore(),
		queue:     db.IndexQueue(),
		scheduler: db.SchedulerStore(),
		templates: services.LayeredSource{imported, fileTemplates},
		writer:    imported,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("closing database: %v", err)
			}
		},
	}, nil
}
