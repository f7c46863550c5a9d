// Command analyser fetches a player's recent chess.com games, scores every
// move with a local Stockfish engine, and delivers a quality report.
//
// Usage:
//
//	analyser run              one-shot batch: fetch, analyze, report, deliver
//	analyser serve            HTTP API plus background batch runs
//	analyser eval --fen FEN   evaluate a single position
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1Levick3/Analyser-chess/internal/analysis"
	"github.com/1Levick3/Analyser-chess/internal/api"
	"github.com/1Levick3/Analyser-chess/internal/batch"
	"github.com/1Levick3/Analyser-chess/internal/chesscom"
	"github.com/1Levick3/Analyser-chess/internal/config"
	"github.com/1Levick3/Analyser-chess/internal/delivery"
	"github.com/1Levick3/Analyser-chess/internal/engine"
	"github.com/1Levick3/Analyser-chess/internal/logger"
	"github.com/1Levick3/Analyser-chess/internal/store"
	"github.com/1Levick3/Analyser-chess/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	root := &cobra.Command{
		Use:   "analyser",
		Short: "Chess.com game quality analyser",
	}
	root.AddCommand(runCmd(cfg))
	root.AddCommand(serveCmd(cfg))
	root.AddCommand(evalCmd(cfg))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one analysis batch and deliver the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, cleanup, err := buildRunner(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			if summary.Fetched == 0 {
				logger.Info("no new games to analyze")
				return nil
			}
			logger.Info("batch finished: %d fetched, %d classified, %d skipped, %d eval failures, %d abandoned, delivered=%t, checkpoint=%d",
				summary.Fetched, summary.Classified, summary.Skipped, summary.EvalFailed,
				summary.Abandoned, summary.Delivered, summary.Checkpoint)
			return nil
		},
	}
}

func serveCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run batches in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
			srv := &api.Server{
				Store:  runner.Store,
				Pool:   pool,
				Runner: runner,
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			if cfg.RunInterval > 0 {
				go scheduleRuns(ctx, pool, runner, cfg.RunInterval)
			}

			httpServer := &http.Server{
				Addr:         cfg.Addr,
				Handler:      srv.Routes(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				logger.Info("HTTP server listening on %s", cfg.Addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error: %v", err)
					os.Exit(1)
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			sig := <-stop
			logger.Info("received signal %v, initiating graceful shutdown", sig)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error: %v", err)
			}
			pool.Stop()
			return nil
		},
	}
}

func evalCmd(cfg config.Config) *cobra.Command {
	var fen string
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a single position",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fen == "" {
				return fmt.Errorf("--fen is required")
			}

			eng, err := engine.NewEngine(cfg.StockfishPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			result, err := eng.Evaluate(ctx, fen, cfg.StockfishDepth)
			if err != nil {
				return err
			}
			if result.Mate != nil {
				fmt.Printf("mate in %d (white perspective), best move %s\n", *result.Mate, result.BestMove)
			} else {
				fmt.Printf("%.0f centipawns (white perspective), best move %s\n", result.CP, result.BestMove)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "", "Position in FEN notation")
	return cmd
}

// buildRunner assembles the batch pipeline from configuration. The returned
// cleanup closes the engine pool and the store.
func buildRunner(cfg config.Config) (*batch.Runner, func(), error) {
	if cfg.Username == "" {
		return nil, nil, fmt.Errorf("CHESSCOM_USERNAME is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	enginePool, err := engine.NewPool(cfg.StockfishPath, cfg.EngineCount)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	deliverer, err := delivery.FromConfig(cfg)
	if err != nil {
		enginePool.Close()
		st.Close()
		return nil, nil, err
	}

	classifier := analysis.NewClassifier(cfg.Username, cfg.StockfishDepth, cfg.OpeningBookPlies, analysis.Thresholds{
		Blunder:    cfg.BlunderCP,
		Mistake:    cfg.MistakeCP,
		Inaccuracy: cfg.InaccuracyCP,
	})

	runner := &batch.Runner{
		Username:         cfg.Username,
		Source:           chesscom.New(cfg.ChessComRPS),
		Evaluator:        enginePool,
		Classifier:       classifier,
		Store:            st,
		Deliverer:        deliverer,
		Concurrency:      enginePool.Size(),
		Timeout:          cfg.BatchTimeout,
		AbortOnEvalError: cfg.AbortOnEvalError,
	}

	cleanup := func() {
		enginePool.Close()
		st.Close()
	}
	return runner, cleanup, nil
}

func scheduleRuns(ctx context.Context, pool *worker.Pool, runner worker.BatchRunner, interval time.Duration) {
	log := logger.Default().WithPrefix("scheduler")
	log.Info("scheduling batch runs every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !pool.Submit(&worker.RunBatchJob{Runner: runner}) {
				log.Warn("previous run still queued, skipping this interval")
			}
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		}
	}
}
