package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/ipc"
	"reelforge/internal/queue"
	"reelforge/internal/sheets"
)

var manualFileExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
	".mkv":  {},
}

func newAddJobCommand(ctx *commandContext) *cobra.Command {
	var prompt string
	var syncSheet bool

	cmd := &cobra.Command{
		Use:   "add-job <title>",
		Short: "Queue a new video generation job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return errors.New("job title is required")
			}
			if strings.TrimSpace(prompt) == "" {
				return errors.New("a generation prompt is required (use --prompt)")
			}

			return ctx.withQueue(func(client *ipc.Client, store *queue.Store) error {
				var id int64
				if client != nil {
					resp, err := client.JobAdd(title, prompt)
					if err != nil {
						return err
					}
					id = resp.Item.ID
				} else {
					item, err := store.NewJob(cmd.Context(), title, prompt)
					if err != nil {
						return err
					}
					id = item.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job as item #%d (%s)\n", id, title)

				if syncSheet {
					added, syncErr := syncSheetJobs(cmd.Context(), ctx, client, store)
					if syncErr != nil {
						return syncErr
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Synced %d new jobs\n", added)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Generation prompt for the video")
	cmd.Flags().BoolVar(&syncSheet, "sync", false, "Also pull pending jobs from the configured sheet")
	return cmd
}

func newAddFileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-file <path>",
		Short: "Add an already-exported video file to the local lane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := manualFileExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			return ctx.withQueue(func(client *ipc.Client, store *queue.Store) error {
				var id int64
				if client != nil {
					resp, err := client.FileAdd(absPath)
					if err != nil {
						return err
					}
					id = resp.Item.ID
				} else {
					item, err := store.NewFile(cmd.Context(), absPath)
					if err != nil {
						return err
					}
					id = item.ID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued manual file as item #%d (%s)\n", id, filepath.Base(absPath))
				return nil
			})
		},
	}
}

func newSyncJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-jobs",
		Short: "Pull pending jobs from the configured sheet into the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(client *ipc.Client, store *queue.Store) error {
				added, err := syncSheetJobs(cmd.Context(), ctx, client, store)
				if err != nil {
					return err
				}
				if added == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No new jobs to sync")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d new jobs\n", added)
				return nil
			})
		},
	}
}

func syncSheetJobs(runCtx context.Context, ctx *commandContext, client *ipc.Client, store *queue.Store) (int, error) {
	if client != nil {
		resp, err := client.JobsSync()
		if err != nil {
			return 0, err
		}
		return resp.Added, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return 0, err
	}
	source := sheets.NewSource(cfg, nil)
	if !source.Configured() {
		return 0, errors.New("no sheet source configured; set sheets.source")
	}
	return source.Sync(runCtx, store)
}
