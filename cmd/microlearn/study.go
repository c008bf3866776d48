package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"microlearn/internal/client"
	"microlearn/internal/learning"
	"microlearn/internal/logger"
	"microlearn/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const drainTimeout = 10 * time.Second

type studyOptions struct {
	bundle  string
	session string
	offline bool
}

func newStudyCmd(root *rootOptions) *cobra.Command {
	opts := &studyOptions{}
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Study a generated bundle: summary, quiz and flashcards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := readBundleFile(opts.bundle)
			if err != nil {
				return err
			}
			sessionID := opts.session
			if sessionID == "" {
				sessionID = f.SessionID
			}

			var (
				api      *client.Client
				reporter learning.ProgressReporter = learning.NopReporter{}
				async    *client.AsyncReporter
			)
			if !opts.offline && sessionID != "" {
				cfg, err := loadConfig(root)
				if err != nil {
					return err
				}
				api = client.NewFromConfig(cfg.Client)
				if _, err := api.GetProgress(cmd.Context(), sessionID); err != nil {
					return fmt.Errorf("session %s is not available on %s: %w", sessionID, api.BaseURL(), err)
				}
				async = client.NewAsyncReporter(api, cfg.Client.Timeout)
				reporter = async
			}

			model := tui.NewModel(cmd.Context(), sessionID, f.Bundle, reporter)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return err
			}

			return finishStudy(cmd.OutOrStdout(), api, async, sessionID, model)
		},
	}
	cmd.Flags().StringVar(&opts.bundle, "bundle", "", "bundle file written by generate (json or yaml)")
	cmd.Flags().StringVar(&opts.session, "session", "", "session to report progress to (defaults to the bundle's session)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "do not report progress to the server")
	_ = cmd.MarkFlagRequired("bundle")
	return cmd
}

// finishStudy flushes pending reports, records the time spent and prints a recap.
func finishStudy(w io.Writer, api *client.Client, async *client.AsyncReporter, sessionID string, model *tui.Model) error {
	elapsed := model.Elapsed()
	quiz := model.Quiz()
	if quiz.Status() == learning.QuizCompleted && quiz.Total() > 0 {
		_, _ = fmt.Fprintf(w, "quiz: %d/%d (%d%%)\n", quiz.Score(), quiz.Total(), quiz.Percent())
	}
	_, _ = fmt.Fprintf(w, "studied for %s\n", elapsed.Truncate(time.Second))

	if api == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := async.Wait(ctx); err != nil {
		logger.Get().Warn("Pending progress reports dropped", zap.Error(err))
	}
	if seconds := int64(elapsed / time.Second); seconds > 0 {
		if _, err := api.RecordStudyTime(ctx, sessionID, seconds); err != nil {
			return fmt.Errorf("failed to record study time: %w", err)
		}
	}
	if failed := async.Failures(); failed > 0 {
		_, _ = fmt.Fprintf(w, "%d progress updates could not be sent\n", failed)
	}

	analytics, err := api.GetAnalytics(ctx, sessionID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "session %s: %d quizzes (avg %.1f%%), %d card reviews (%.0f%% known), streak %d days\n",
		sessionID, analytics.TotalQuizzes, analytics.AverageQuizScore,
		analytics.FlashcardReviews, analytics.FlashcardAccuracy*100, analytics.StreakDays)
	return nil
}
