package main

import (
	"EnglishTeacher/internal/ai"
	"EnglishTeacher/internal/app/metrics"
	"EnglishTeacher/internal/app/session"
	"EnglishTeacher/internal/app/web"
	"EnglishTeacher/internal/config"
	"EnglishTeacher/internal/service/settings"
	"EnglishTeacher/internal/service/teacher"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "set OPENAI_API_KEY in the environment or .env, or run with -stub")
		}
		os.Exit(1)
	}

	// создаём предустановленный регистратор zap
	var logger *zap.Logger
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"StubAI", cfg.StubAI,
		"Model", cfg.OpenAI.Model,
		"BindAddr", cfg.BindAddr,
	)

	var client ai.Client
	if cfg.StubAI {
		client = ai.NewStubClient()
		sugar.Warnw("Используется заглушка вместо OpenAI")
	} else {
		oClient := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.RequestTimeout)
		client = ai.NewResponsesClient(oClient, cfg.OpenAI.Model, sugar)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sessions := session.NewManager(func() *teacher.Teacher {
		return teacher.New(client, cfg.HistoryWindow, sugar).WithObserver(m)
	}, session.Options{
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SessionSweepInterval,
		DefaultMode:   settings.Mode(cfg.DefaultMode),
		DefaultLevel:  settings.Level(cfg.DefaultLevel),
	}, sugar)
	sessions.OnChange(m.SetSessions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sessions.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			sugar.Errorw("Очистка сессий остановлена", "error", err)
		}
	}()

	srv := web.New(cfg.BindAddr, sessions, m, reg, sugar)
	if err := srv.Start(ctx); err != nil {
		sugar.Errorw("Не удалось запустить веб-сервер", "error", err)
		return
	}

	<-ctx.Done()
	sugar.Infow("Получен сигнал остановки")
	if err := srv.Stop(context.Background()); err != nil {
		sugar.Errorw("Ошибка остановки веб-сервера", "error", err)
	}
}
