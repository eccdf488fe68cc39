// Copyright 2026 Harbor AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/harborai/docqa"
	"github.com/harborai/docqa/ai"
	"github.com/harborai/docqa/ai/openai"
	"github.com/harborai/docqa/chat"
	"github.com/harborai/docqa/reindex"
	"github.com/harborai/docqa/upload"
	"github.com/harborai/docqa/vectorindex/badger"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docqa",
		Usage: "Document question answering over your own files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Data directory for the store and index",
				Value:   "./data",
				EnvVars: []string{"DOCQA_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "OpenAI-compatible service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"DOCQA_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "nomic-embed-text",
				EnvVars: []string{"DOCQA_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "completion-model",
				Usage:   "Completion model name",
				Value:   "mistral",
				EnvVars: []string{"DOCQA_COMPLETION_MODEL"},
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User the operation acts for",
				Value:   "default",
				EnvVars: []string{"DOCQA_USER"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload and ingest documents",
				ArgsUsage: "FILE [FILE...]",
				Action:    uploadCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent uploads",
						Value: 2,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question over your documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "file",
						Usage: "Restrict the answer to one file ID",
					},
					&cli.StringSliceFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Promote chunks containing this keyword (repeatable)",
					},
				},
			},
			{
				Name:   "files",
				Usage:  "List uploaded files",
				Action: filesCommand,
			},
			{
				Name:   "history",
				Usage:  "Show past questions and answers",
				Action: historyCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a file and its indexed chunks",
				ArgsUsage: "FILE_ID",
				Action:    deleteCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all indexed chunks with the configured embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "Delete all files, chunks and chat history",
				Action: clearCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Admin token",
						Required: true,
						EnvVars:  []string{"DOCQA_ADMIN_TOKEN"},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openService(c *cli.Context) (*docqa.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return docqa.NewService(c.String("data"),
		docqa.WithAIConfig(aiConfig),
		docqa.WithAdminToken(os.Getenv("DOCQA_ADMIN_TOKEN")),
	)
}

func uploadCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	uploader, err := service.NewUploader(
		filepath.Join(c.String("data"), "uploads"),
		upload.WithPoolSize(c.Int("workers")),
	)
	if err != nil {
		return err
	}
	defer uploader.Close()

	results := uploader.UploadAll(context.Background(), c.Args().Slice(), c.String("user"))

	var failed int
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", result.Path, result.Err)
			continue
		}
		fmt.Printf("ok      %s (file %d)\n", result.Record.Filename, result.Record.Id)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(results))
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	chatService, err := service.NewChatService()
	if err != nil {
		return err
	}

	answer, err := chatService.Ask(context.Background(), chat.Request{
		UserID:   c.String("user"),
		Question: question,
		FileID:   c.Int64("file"),
		Keywords: c.StringSlice("keyword"),
	})
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}

func filesCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	records, err := service.Files().List(context.Background(), c.String("user"))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no files uploaded")
		return nil
	}

	for _, record := range records {
		fmt.Printf("%6d  %s  %s\n",
			record.Id, record.UploadTime.Format("2006-01-02 15:04"), record.Filename)
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	chatService, err := service.NewChatService()
	if err != nil {
		return err
	}

	entries, err := chatService.History(context.Background(), c.String("user"))
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Printf("[%s] Q: %s\nA: %s\n\n",
			entry.Timestamp.Format("2006-01-02 15:04"), entry.Question, entry.Answer)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file ID is required")
	}

	var fileID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &fileID); err != nil {
		return fmt.Errorf("invalid file ID %q", c.Args().First())
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	reconciler, err := service.NewReconciler()
	if err != nil {
		return err
	}

	result, err := reconciler.DeleteFile(context.Background(), fileID)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (file %d)\n", result.Status, result.Filename, result.FileID)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithCompletionModel(c.String("completion-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Open the index directly; the service would wire a full AI provider
	// we don't need here.
	index, err := badger.Open(filepath.Join(c.String("data"), "index"), false, embedder)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("batch-size"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))

	reindexer := reindex.NewReindexer(index, embedder, config, os.Stderr)
	return reindexer.Run(context.Background())
}

func clearCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	reconciler, err := service.NewReconciler()
	if err != nil {
		return err
	}

	result, err := reconciler.ClearAll(context.Background(), c.String("token"))
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d files and %d chat entries\n",
		result.FilesDeleted, result.ChatsDeleted)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
