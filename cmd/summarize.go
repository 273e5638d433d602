package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/threadlens/threadlens/internal/buildcfg"
	"github.com/threadlens/threadlens/internal/completion"
	"github.com/threadlens/threadlens/internal/directory"
	"github.com/threadlens/threadlens/internal/instrumentation"
	"github.com/threadlens/threadlens/internal/missive"
	"github.com/threadlens/threadlens/internal/session"
)

func newSummarizeCmd() *cobra.Command {
	var (
		debugMode     bool
		directoryPath string
		taskText      string
		assignee      string
		postComments  bool
	)

	cmd := &cobra.Command{
		Use:   "summarize <conversation-id>",
		Short: "Summarize a single conversation",
		Long: `Summarize fetches one Missive conversation, sends its thread to the
completion vendor and prints the detected tone and the structured summary
sections.

Optionally a task can be created from an action-item line (--task), the
conversation can be assigned to a teammate (--assign) and the summary
sections can be posted back as comments (--comment).

Credentials are read from the MISSIVE_API_TOKEN and OPEN_AI_API environment
variables (a .env file in the working directory is honored).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(args[0], debugMode, directoryPath, taskText, assignee, postComments)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&directoryPath, "directory", "", "Path to a JSON file mapping teammate names to user IDs")
	cmd.Flags().StringVar(&taskText, "task", "", "Create a task from this action-item text")
	cmd.Flags().StringVar(&assignee, "assign", "", "Assign the conversation to this teammate")
	cmd.Flags().BoolVar(&postComments, "comment", false, "Post the summary sections back as conversation comments")

	return cmd
}

func runSummarize(conversationID string, debugMode bool, directoryPath, taskText, assignee string, postComments bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	logger := newLogger(debugMode)

	hostToken := os.Getenv(buildcfg.EnvHostToken)
	if hostToken == "" {
		return fmt.Errorf("%s environment variable is required", buildcfg.EnvHostToken)
	}
	completionKey := os.Getenv(buildcfg.EnvCompletionKey)
	if completionKey == "" {
		return fmt.Errorf("%s environment variable is required", buildcfg.EnvCompletionKey)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()

	hostOpts := []missive.Option{
		missive.WithLogger(logger),
		missive.WithMetrics(provider.Metrics()),
	}
	if baseURL := os.Getenv(buildcfg.EnvHostBaseURL); baseURL != "" {
		hostOpts = append(hostOpts, missive.WithBaseURL(baseURL))
	}
	hostClient, err := missive.NewClient(hostToken, hostOpts...)
	if err != nil {
		return fmt.Errorf("failed to create host client: %w", err)
	}

	completionClient, err := completion.NewClient(completionKey,
		completion.WithLogger(logger),
		completion.WithMetrics(provider.Metrics()))
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	var dir *directory.Directory
	if directoryPath != "" {
		dir, err = directory.LoadFile(directoryPath)
		if err != nil {
			return fmt.Errorf("failed to load directory: %w", err)
		}
	}

	sess, err := session.New(session.Config{
		Source:     hostClient,
		Summarizer: completionClient,
		Directory:  dir,
		Logger:     logger,
		Metrics:    provider.Metrics(),
		Audit:      instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging),
	})
	if err != nil {
		return err
	}

	result, err := sess.Select(ctx, []string{conversationID})
	if err != nil {
		return err
	}

	if result.Subject != "" {
		fmt.Printf("Subject: %s\n", result.Subject)
	}
	fmt.Printf("Tone: %s (confidence %d)\n\n", result.Tone.Tone, result.Tone.Confidence)
	for _, section := range result.Sections {
		fmt.Printf("## %s\n\n%s\n\n", section.Title, section.Content)
	}

	if taskText != "" {
		taskResult, err := sess.CreateTask(ctx, conversationID, taskText)
		if err != nil {
			return err
		}
		if taskResult.Assignee != "" {
			fmt.Printf("Task created and assigned to %s\n", taskResult.Assignee)
		} else {
			fmt.Println("Task created and assigned to you")
		}
	}

	if assignee != "" {
		if err := sess.AssignConversation(ctx, conversationID, assignee); err != nil {
			return err
		}
	}

	if postComments {
		report, err := sess.PostSectionComments(ctx, conversationID, result.Sections)
		if err != nil {
			return err
		}
		fmt.Printf("Posted %d comments", report.Posted)
		if report.Failed > 0 {
			fmt.Printf(" (%d failed)", report.Failed)
		}
		fmt.Println()
	}

	return nil
}
