package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ikit/internal/auth"
	"ikit/internal/config"
	"ikit/internal/history"
	"ikit/internal/logging"
	"ikit/internal/services"
	"ikit/internal/textutil"
	"ikit/internal/upload"
)

type uploadRow struct {
	Path      string `json:"path"`
	FileName  string `json:"fileName"`
	Outcome   string `json:"outcome"`
	FileID    string `json:"fileId,omitempty"`
	URL       string `json:"url,omitempty"`
	Size      int64  `json:"size,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Error     string `json:"error,omitempty"`
	Millis    int64  `json:"durationMs"`
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var tags []string
	var concurrency int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload local files to the media library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireUploadKeys(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := batchOptions(cfg, folder, tags, concurrency)
			client := upload.NewClient(upload.Config{
				Endpoint: cfg.Upload.Endpoint,
				Timeout:  cfg.UploadTimeout(),
			}, upload.WithLogger(logger))
			signer := auth.Signer{PrivateKey: cfg.ImageKit.PrivateKey, TTL: cfg.TokenTTL()}

			var rows []uploadRow
			err = ctx.withHistory(cmd.Context(), func(store *history.Store) error {
				var runErr error
				rows, runErr = runUploads(cmd.Context(), client, signer, opts, store, args, logger)
				return runErr
			})
			if err != nil && len(rows) == 0 {
				return err
			}

			if asJSON {
				if jsonErr := writeJSON(cmd, rows); jsonErr != nil {
					return jsonErr
				}
			} else {
				renderUploadRows(cmd, rows)
			}
			if err != nil {
				return err
			}
			for _, row := range rows {
				if row.Outcome != services.OutcomeSucceeded {
					return fmt.Errorf("%d of %d uploads did not succeed", countFailed(rows), len(rows))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Destination folder (defaults to upload.folder)")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Tag to attach (repeatable; adds to upload.tags)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel uploads (defaults to upload.concurrency)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func batchOptions(cfg *config.Config, folder string, tags []string, concurrency int) upload.BatchOptions {
	opts := upload.BatchOptions{
		PublicKey:         cfg.ImageKit.PublicKey,
		Folder:            cfg.Upload.Folder,
		UseUniqueFileName: cfg.Upload.UseUniqueFileName,
		Concurrency:       cfg.Upload.Concurrency,
		RequestsPerSecond: cfg.Upload.RequestsPerSecond,
	}
	if strings.TrimSpace(folder) != "" {
		opts.Folder = textutil.CleanFolder(folder)
	}
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}
	seen := map[string]struct{}{}
	for _, tag := range append(append([]string{}, cfg.Upload.Tags...), tags...) {
		tag = textutil.SanitizeTag(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		opts.Tags = append(opts.Tags, tag)
	}
	return opts
}

// runUploads uploads paths and records each finished file in store, which
// may be nil. Rows are returned in input order.
func runUploads(ctx context.Context, uploader upload.Uploader, signer upload.Signer, opts upload.BatchOptions, store *history.Store, paths []string, logger *slog.Logger) ([]uploadRow, error) {
	var (
		mu        sync.Mutex
		recordErr error
	)
	record := func(result upload.Result) {
		if store == nil {
			return
		}
		if _, err := store.Record(ctx, historyEntry(result, opts)); err != nil {
			logger.Warn("history record failed", slog.String("path", result.Path), logging.Error(err))
			mu.Lock()
			if recordErr == nil {
				recordErr = err
			}
			mu.Unlock()
		}
	}

	results, err := upload.NewBatch(uploader, signer, opts, logger).Run(ctx, paths, record)
	rows := make([]uploadRow, 0, len(results))
	for _, result := range results {
		rows = append(rows, newUploadRow(result))
	}
	if err != nil {
		return rows, err
	}
	if recordErr != nil {
		logger.Warn("some uploads were not recorded in history", logging.Error(recordErr))
	}
	return rows, nil
}

func historyEntry(result upload.Result, opts upload.BatchOptions) history.Entry {
	entry := history.Entry{
		LocalPath: result.Path,
		FileName:  result.FileName,
		Folder:    opts.Folder,
		Outcome:   result.Outcome(),
		Tags:      opts.Tags,
		StartedAt: result.Started,
		Duration:  result.Duration,
	}
	if resp := result.Response; resp != nil {
		entry.FileID = resp.FileID
		entry.URL = resp.URL
		entry.FilePath = resp.FilePath
		entry.Size = resp.Size
		entry.RequestID = resp.Metadata.RequestID
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
		if entry.RequestID == "" {
			entry.RequestID = upload.RequestIDOf(result.Err)
		}
	}
	return entry
}

func newUploadRow(result upload.Result) uploadRow {
	entry := historyEntry(result, upload.BatchOptions{})
	return uploadRow{
		Path:      entry.LocalPath,
		FileName:  entry.FileName,
		Outcome:   entry.Outcome,
		FileID:    entry.FileID,
		URL:       entry.URL,
		Size:      entry.Size,
		RequestID: entry.RequestID,
		Error:     entry.Error,
		Millis:    entry.Duration.Milliseconds(),
	}
}

func renderUploadRows(cmd *cobra.Command, rows []uploadRow) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	table := make([][]string, 0, len(rows))
	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Outcome]++
		detail := row.URL
		if row.Error != "" {
			detail = row.Error
		}
		table = append(table, []string{
			row.FileName,
			outcomeLabel(row.Outcome, colorize),
			formatBytes(row.Size),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "File"},
		{title: "Outcome"},
		{title: "Size", right: true},
		{title: "URL / Error"},
	}, table))
	fmt.Fprintln(out, summaryLine(counts))
}

func countFailed(rows []uploadRow) int {
	n := 0
	for _, row := range rows {
		if row.Outcome != services.OutcomeSucceeded {
			n++
		}
	}
	return n
}
