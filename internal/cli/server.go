package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wisdom-quiz-service/internal/app"
	"wisdom-quiz-service/internal/config"
	"wisdom-quiz-service/internal/domain"
	"wisdom-quiz-service/internal/infra/memory"
	pgstore "wisdom-quiz-service/internal/infra/postgres"
	redisstore "wisdom-quiz-service/internal/infra/redis"
	"wisdom-quiz-service/internal/lifeline"
	"wisdom-quiz-service/internal/shuffle"
	transport "wisdom-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionRepository(redisClient, loader, quizTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, quizTTL)
	}

	var answerRepo app.AnswerRepository
	if pool != nil {
		answerRepo = pgstore.NewAnswerStore(pool)
	} else {
		answerRepo = memory.NewAnswerStore()
	}
	if redisClient != nil {
		answerRepo = redisstore.NewStatsRecorder(redisClient, answerRepo, redisTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewQuizService(
		store,
		questionRepo,
		answerRepo,
		shuffle.NewShuffler(nil),
		lifeline.NewEngine(),
		cfg.Quiz.TimePerQuestion,
	)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting wisdom quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides demo quiz data for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Prompt:        "What does a unique constraint on (participant_id, question_id) prevent?",
					Options:       []string{"Slow queries", "Double-crediting an answer", "Index bloat", "Deadlocks"},
					CorrectOption: 1,
					Difficulty:    2,
					OrderIndex:    0,
				},
				{
					ID:            "q2",
					Prompt:        "Which store should never hold shuffled option indices?",
					Options:       []string{"The answer store", "The session cache", "The client", "The question cache"},
					CorrectOption: 0,
					Difficulty:    3,
					OrderIndex:    1,
				},
				{
					ID:            "q3",
					Prompt:        "When does the audience lifeline simulate percentages?",
					Options:       []string{"Always", "Never", "When no answers are recorded yet", "Only in tests"},
					CorrectOption: 2,
					Difficulty:    1,
					OrderIndex:    2,
				},
			},
		},
	}
}
