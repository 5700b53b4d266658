package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	infraEvents "github.com/davicafu/hexatasks/internal/infra/events"
	taskEvents "github.com/davicafu/hexatasks/internal/task/infra/inbound/events"
	taskHttp "github.com/davicafu/hexatasks/internal/task/infra/inbound/http"
)

func serveCmd(env *runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetString("port")
			if port == "" {
				port = env.cfg.HTTPPort
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, env, port)
		},
	}
	cmd.Flags().StringP("port", "p", "", "HTTP port (defaults to HTTP_PORT)")
	return cmd
}

func runServe(ctx context.Context, env *runtimeEnv, port string) error {
	log := env.log
	a, err := buildApp(ctx, env.cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Load(ctx); err != nil {
		return err
	}

	// ---------------- Events ---------------
	var recorder taskEvents.ActivityRecorder
	if a.activity != nil && a.cfg.EventBus != "clickhouse" {
		recorder = a.activity
	}
	consumer := taskEvents.NewActivityConsumer(recorder, log)

	switch {
	case a.bus != nil:
		log.Info("🎧 Iniciando listener en memoria para eventos de tarea")
		taskEvents.BackgroundConsumerChan(ctx, a.bus.Subscribe(64), consumer)
	case a.cfg.EventBus == "kafka":
		reader := infraEvents.NewKafkaReader(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, "hexatasks-activity")
		infraEvents.NewConsumerAdapter(reader, a.cfg.KafkaTopic, consumer, log).Start(ctx)
	}

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	handler := taskHttp.NewTaskHandler(a.service, a.session, a.trendReader(), a.lang, log)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           taskHttp.NewRouter(handler, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down server")
	defer consumer.LogSummary()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
