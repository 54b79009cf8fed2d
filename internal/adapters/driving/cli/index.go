package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsmith/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Keep documents in the search index",
	Long: `Submits stored documents to the external search index.

New and changed documents are queued automatically. Use these commands to
index in bulk, to catch approved documents the index is missing, or to run
the background worker that drains the queue.`,
}

var indexAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Index documents in bulk",
	Long:  `Indexes every document matching the filters. Approved documents are indexed by default.`,
	RunE:  runIndexAll,
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index approved documents missing from the index",
	RunE:  runIndexSync,
}

var indexDocCmd = &cobra.Command{
	Use:   "doc [doc-id]",
	Short: "Index a single document",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDoc,
}

var indexDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Deliver queued index jobs",
	Long: `Delivers queued index jobs once. With --every the queue is drained on
that interval until interrupted.`,
	RunE: runIndexDrain,
}

var indexWorkerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background index tasks",
	Long: `Runs the scheduler in the foreground: the index queue is drained every
minute and approved documents are synced hourly. Stop with Ctrl+C.`,
	RunE: runIndexWorker,
}

var (
	indexKind   string
	indexStatus string
	indexForce  bool
	drainEvery  time.Duration
)

func init() {
	indexAllCmd.Flags().StringVar(&indexKind, "kind", "", "only index this kind")
	indexAllCmd.Flags().StringVar(&indexStatus, "status", "", "only index this status (default approved)")
	indexAllCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "re-index documents already in the index")
	indexDocCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "re-index even if already indexed")
	indexDrainCmd.Flags().DurationVar(&drainEvery, "every", 0, "drain repeatedly on this interval")

	indexCmd.AddCommand(indexAllCmd)
	indexCmd.AddCommand(indexSyncCmd)
	indexCmd.AddCommand(indexDocCmd)
	indexCmd.AddCommand(indexDrainCmd)
	indexCmd.AddCommand(indexWorkerCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexAll(cmd *cobra.Command, _ []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}

	filter := domain.BulkFilter{Force: indexForce}
	if indexKind != "" {
		kind, err := domain.ParseDocumentKind(indexKind)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	if indexStatus != "" {
		status, err := domain.ParseDocumentStatus(indexStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	cmd.Println("Indexing documents...")
	var res domain.BulkIndexResult
	err := withProgress(cmd, func(ctx context.Context) error {
		var err error
		res, err = indexer.IndexAll(ctx, filter)
		return err
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d of %d documents (%d skipped, %d failed)\n",
		res.Indexed, res.Total, res.Skipped, res.Failed)
	return nil
}

func runIndexSync(cmd *cobra.Command, _ []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}

	cmd.Println("Checking approved documents...")
	var res domain.SyncResult
	err := withProgress(cmd, func(ctx context.Context) error {
		var err error
		res, err = indexer.Sync(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Checked %d documents: %d newly indexed, %d failed\n",
		res.Checked, res.NewlyIndexed, res.Failed)
	return nil
}

func runIndexDoc(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	res, err := indexer.IndexDocument(ctx, doc, indexForce)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("%s: %s", indexBadge(res.Status), res.ExternalID)
	if res.Message != "" {
		cmd.Printf(" (%s)", res.Message)
	}
	cmd.Println()
	return nil
}

func runIndexDrain(cmd *cobra.Command, _ []string) error {
	if indexWorker == nil {
		return errors.New("index worker not configured")
	}

	if drainEvery > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.Printf("Draining every %s. Press Ctrl+C to stop.\n", drainEvery)
		if err := indexWorker.Run(ctx, drainEvery); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("drain failed: %w", err)
		}
		return nil
	}

	n, err := indexWorker.Drain(context.Background())
	if err != nil {
		return fmt.Errorf("drain failed: %w", err)
	}
	cmd.Printf("Delivered %d queued jobs\n", n)
	return nil
}

func runIndexWorker(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println("Index worker running. Press Ctrl+C to stop.")
	err := scheduler.Start(ctx)
	if stopErr := scheduler.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker stopped: %w", err)
	}
	cmd.Println("Index worker stopped.")
	return nil
}

// withProgress runs fn while printing elapsed time every half second.
func withProgress(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx := context.Background()
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(ctx)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	ticked := false
	for {
		select {
		case err := <-errCh:
			if ticked {
				cmd.Println()
			}
			return err
		case <-ticker.C:
			ticked = true
			cmd.Printf("\rWorking... %s", time.Since(start).Round(time.Second))
		}
	}
}
