package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/secondbrain/backend/internal/infrastructure/discovery"
)

const (
	// EnvServerURL 服务地址环境变量
	EnvServerURL = "SECONDBRAIN_URL"
	// EnvToken JWT 环境变量
	EnvToken = "SECONDBRAIN_TOKEN"

	defaultServerURL = "http://127.0.0.1:8000"
	defaultUserID    = "default"
)

var version = "dev"

// options 全局参数
type options struct {
	server  string
	token   string
	userID  string
	timeout time.Duration
}

func (o *options) client() *Client {
	return NewClient(strings.TrimRight(o.server, "/"), o.token, o.timeout)
}

// NewRootCommand 创建 sbctl 根命令
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sbctl",
		Short: "Command line client for a SecondBrain server",
		Long: `sbctl talks to a running SecondBrain server over its HTTP API.

Quick Start:
  sbctl upload notes.pdf                 # Ingest a file
  sbctl link https://youtu.be/<id>       # Ingest a web page or video
  sbctl ask "What is this about?"        # Start a chat
  sbctl history                          # List chats by bucket`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr(EnvServerURL, defaultServerURL), "SecondBrain server URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv(EnvToken), "JWT bearer token")
	root.PersistentFlags().StringVarP(&opts.userID, "user", "u", defaultUserID, "User id")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")

	root.AddCommand(
		newHistoryCommand(opts),
		newUploadCommand(opts),
		newLinkCommand(opts),
		newAskCommand(opts),
		newShowCommand(opts),
		newRenameCommand(opts),
		newDeleteCommand(opts),
		newGraphCommand(opts),
		newDiscoverCommand(),
	)
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	return root
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List chats grouped into videos, documents and web",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := opts.client().History(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), history)
			return nil
		},
	}
}

func newUploadCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document and start a chat about it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("cannot read %s: %w", args[0], err)
			}
			result, err := opts.client().Upload(cmd.Context(), opts.userID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(result.Filename), dimStyle.Render(string(result.Type)))
			fmt.Fprintf(out, "%s %s\n", dimStyle.Render("chat:"), idStyle.Render(result.ChatID))
			return nil
		},
	}
}

func newLinkCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "link <url>",
		Short: "Ingest a web page or YouTube video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.client().ProcessLink(cmd.Context(), opts.userID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n",
				titleStyle.Render(result.Detail.Title),
				dimStyle.Render(string(result.Type)),
				countStyle.Render(fmt.Sprintf("%d chunks", result.Detail.Chunks)),
			)
			fmt.Fprintf(out, "%s %s\n", dimStyle.Render("chat:"), idStyle.Render(result.ChatID))
			return nil
		},
	}
}

func newAskCommand(opts *options) *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question, optionally continuing a chat",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			result, err := opts.client().Ask(cmd.Context(), opts.userID, chatID, query)
			if err != nil {
				return err
			}
			renderAnswer(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "Continue the chat with this id")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Print the messages of a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := opts.client().Chat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(chat.Metadata.Title), dimStyle.Render(chat.Metadata.SourceType))
			for _, m := range chat.Messages {
				fmt.Fprintf(out, "\n%s\n%s\n", headerStyle.Render(m.Role), answerStyle.Render(m.Content))
			}
			return nil
		},
	}
}

func newRenameCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <chat-id> <title>",
		Short: "Rename a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.client().Rename(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", idStyle.Render(result.ChatID), titleStyle.Render(result.Title))
			return nil
		},
	}
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat and its indexed source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", idStyle.Render(result.ChatID))
			return nil
		},
	}
}

func newGraphCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Summarize the knowledge graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.client().Graph(cmd.Context(), opts.userID)
			if err != nil {
				return err
			}
			renderGraph(cmd.OutOrStdout(), g)
			return nil
		},
	}
}

func newDiscoverCommand() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find SecondBrain servers on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := discovery.Browse(cmd.Context(), wait)
			if err != nil {
				return err
			}
			renderInstances(cmd.OutOrStdout(), instances)
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Second, "How long to listen for mDNS answers")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
