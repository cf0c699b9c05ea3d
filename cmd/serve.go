package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quiztutor/internal/api"
	"github.com/abhisek/quiztutor/internal/auth"
	"github.com/abhisek/quiztutor/internal/config"
	"github.com/abhisek/quiztutor/internal/evaluation"
	"github.com/abhisek/quiztutor/internal/events"
	"github.com/abhisek/quiztutor/internal/llm"
	"github.com/abhisek/quiztutor/internal/metrics"
	"github.com/abhisek/quiztutor/internal/questiongen"
	"github.com/abhisek/quiztutor/internal/review"
	"github.com/abhisek/quiztutor/internal/session"
	"github.com/abhisek/quiztutor/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		pub, err := events.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		defer pub.Close()

		m := metrics.New()
		tokens := auth.NewTokenService(cfg.AuthSecret, auth.DefaultTokenTTL)

		svc := tutor.NewService(tutor.Deps{
			Sessions:  session.NewStore(),
			Scores:    st.Scores(),
			Mistakes:  st.WrongAnswers(),
			Users:     st.Users(),
			Questions: questiongen.New(provider, questiongen.DefaultConfig()),
			Evaluator: evaluation.NewLLMEvaluator(provider, evaluation.DefaultConfig()),
			Reviews: review.NewTrigger(st.Scores(), st.WrongAnswers(),
				review.NewLLMGenerator(provider), cfg.ReviewEvery, m),
			Events:  pub,
			Metrics: m,
		})

		srv := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: api.NewRouter(api.Options{
				Tutor:          svc,
				Accounts:       auth.NewAccounts(st.Users(), st.Scores(), tokens),
				Tokens:         tokens,
				Metrics:        m,
				CORSOrigins:    cfg.CORSOrigins,
				RequestTimeout: 3 * time.Minute,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("listening on %s (db=%s, llm=%s)", cfg.HTTPAddr, cfg.DBDriver, provider.ModelID())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZTUTOR_HTTP_ADDR)")
}
