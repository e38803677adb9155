package main

import (
	"bvvassist-backend/internal/app"
	"bvvassist-backend/internal/components/chrono"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/config"
	"bvvassist-backend/internal/server"
	libtelemetry "bvvassist-backend/lib/telemetry"
	"bvvassist-backend/lib/util/serviceutil"
	"context"
	"flag"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	port := flag.Int("port", 0, "Overrides server.port from bvvassist.json5.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	cfg, err := config.Load()
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	telemetry.InitSlog(os.Stderr, cfg.LogLevel)

	err = libtelemetry.Setup(ctx, cfg.OtlpSetup("bvv-server"))
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer libtelemetry.Shutdown(context.Background())
	if interval := cfg.PerfStatsInterval(); interval > 0 {
		libtelemetry.InstrumentPerfStats(ctx, interval)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel := telemetry.SlogAPI{}
	application := app.New(tel, cfg, reg, chrono.NewStandardTime())

	if cfg.Server.PurgeSchedule != "" {
		scheduler := chrono.NewStandardCron(tel)
		defer scheduler.Stop()
		err = scheduler.Schedule("purge", cfg.Server.PurgeSchedule, application.Purge)
		if err != nil {
			serviceutil.Fatal("invalid server.purge_schedule", err)
		}
	}

	handler := server.New(tel, application)
	router := handler.Router(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	err = serviceutil.StartHttpServer(ctx, cfg.Server.Port, router)
	if err != nil {
		serviceutil.Fatal("http server stopped", err)
	}
}
