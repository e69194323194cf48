// Command framequery is a small CLI over the FrameQuery API: upload videos,
// watch processing, and inspect jobs and quota from the terminal.
//
// Configuration comes from flags, then FRAMEQUERY_* environment variables
// (a .env file in the working directory is honored), then an optional YAML
// config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	framequery "github.com/framequery/framequery-go"
	"github.com/framequery/framequery-go/config"
)

const defaultConfigPath = ".framequery.yaml"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "framequery:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: framequery <command> [flags]

commands:
  process <file>       upload a video and wait for results
  process-url <url>    submit a video URL and wait for results
  upload <file>        upload a video, print the job id, do not wait
  status <job-id>      print the current state of a job
  list                 list jobs
  quota                print plan and remaining credit`)
}

func run(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to YAML config file")
	filename := fs.String("filename", "", "object name override for uploads")
	limit := fs.Int("limit", 20, "page size for list")
	cursor := fs.String("cursor", "", "pagination cursor for list")
	status := fs.String("status", "", "status filter for list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := []framequery.Option{framequery.WithLogger(logger), framequery.WithMaxRetries(cfg.MaxRetries)}
	if cfg.BaseURL != "" {
		opts = append(opts, framequery.WithBaseURL(cfg.BaseURL))
	}
	client, err := framequery.New(cfg.APIKey, opts...)
	if err != nil {
		return err
	}

	procOpts := &framequery.ProcessOptions{
		PollInterval: cfg.PollInterval,
		Timeout:      cfg.Timeout,
		Observer: framequery.ProgressFunc(func(j *framequery.Job) error {
			fmt.Printf("  status: %s (eta %.0fs)\n", j.Status, j.ETASeconds)
			return nil
		}),
	}

	switch command {
	case "process":
		if fs.NArg() != 1 {
			return fmt.Errorf("process needs exactly one file argument")
		}
		result, err := client.Process(ctx, framequery.LocalPath(fs.Arg(0)), procOpts)
		if err != nil {
			return err
		}
		printResult(result)
		return nil

	case "process-url":
		if fs.NArg() != 1 {
			return fmt.Errorf("process-url needs exactly one URL argument")
		}
		result, err := client.ProcessURL(ctx, fs.Arg(0), procOpts)
		if err != nil {
			return err
		}
		printResult(result)
		return nil

	case "upload":
		if fs.NArg() != 1 {
			return fmt.Errorf("upload needs exactly one file argument")
		}
		var uploadOpts *framequery.UploadOptions
		if *filename != "" {
			uploadOpts = &framequery.UploadOptions{Filename: *filename}
		}
		job, err := client.Upload(ctx, framequery.LocalPath(fs.Arg(0)), uploadOpts)
		if err != nil {
			return err
		}
		fmt.Printf("job created: %s (%s)\n", job.ID, job.Status)
		return nil

	case "status":
		if fs.NArg() != 1 {
			return fmt.Errorf("status needs exactly one job-id argument")
		}
		job, err := client.GetJob(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s", job.ID, job.Status)
		if job.ETASeconds > 0 {
			fmt.Printf(" (eta %.0fs)", job.ETASeconds)
		}
		fmt.Println()
		return nil

	case "list":
		page, err := client.ListJobs(ctx, &framequery.ListJobsOptions{
			Limit:  *limit,
			Cursor: *cursor,
			Status: *status,
		})
		if err != nil {
			return err
		}
		for _, j := range page.Jobs {
			fmt.Printf("%s  %-20s %s\n", j.ID, j.Status, j.Filename)
		}
		if page.HasMore() {
			fmt.Printf("next cursor: %s\n", page.NextCursor)
		}
		return nil

	case "quota":
		quota, err := client.GetQuota(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("plan: %s\n", quota.Plan)
		fmt.Printf("included hours: %.1f\n", quota.IncludedHours)
		fmt.Printf("credits remaining: %.1fh\n", quota.CreditsBalanceHours)
		if quota.ResetDate != "" {
			fmt.Printf("resets: %s\n", quota.ResetDate)
		}
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printResult(result *framequery.ProcessingResult) {
	fmt.Printf("job %s: %s, %.1fs\n", result.JobID, result.Status, result.Duration)
	for _, s := range result.Scenes {
		fmt.Printf("  [%8.1fs] %s %v\n", s.EndTime, s.Description, s.Objects)
	}
	for _, t := range result.Transcript {
		fmt.Printf("  [%.1f-%.1fs] %s\n", t.StartTime, t.EndTime, t.Text)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
