package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"lynqinsights/internal/config"
	"lynqinsights/internal/insight"
	"lynqinsights/internal/llm"
)

func main() {
	cfgPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := newLogger(cfg.Logging.Level)

	client := buildClient(cfg, logger)
	var pipe *insight.Pipeline
	if client != nil {
		defer client.Close()
		pipe = insight.New(client,
			insight.WithTimeout(cfg.TimeoutDuration()),
			insight.WithLogger(logger),
		)
	} else {
		logger.Warn().Msg("no generation backend configured; /insights will serve the configuration-error fallback")
	}

	s := newAPIServer(pipe, cfg.Pipeline.Mode, logger)
	h := withCORS(buildMux(s))

	logger.Info().Str("addr", cfg.Addr()).Str("mode", cfg.Pipeline.Mode).Msg("starting insight server")
	if err := http.ListenAndServe(cfg.Addr(), h2c.NewHandler(h, &http2.Server{})); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// buildClient returns nil when the gemini backend is selected but no key is
// configured; the handler turns that into the 500-with-fallback contract.
func buildClient(cfg *config.Config, logger log.Logger) llm.Client {
	switch cfg.LLM.Provider {
	case "fake":
		logger.Warn().Msg("using fake generation backend")
		return llm.NewFakeClient()
	default:
		if cfg.LLM.APIKey == "" {
			return nil
		}
		client, err := llm.NewGeminiClient(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.RPS, cfg.LLM.Burst)
		if err != nil {
			logger.Fatal().Err(err).Msg("create gemini client")
		}
		return client
	}
}

func newLogger(level string) log.Logger {
	return log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{},
	}
}
