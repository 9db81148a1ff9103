// Command insights runs the pipeline in-process on a metrics JSON file (or
// stdin) and prints the resulting report. This is the direct, no-network
// variant of the service exposed by cmd/server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"lynqinsights/internal/config"
	"lynqinsights/internal/insight"
	"lynqinsights/internal/llm"
	"lynqinsights/internal/util/jsonutil"
)

func main() {
	cfgPath := flag.String("config", "", "path to TOML config file")
	file := flag.String("f", "", "metrics JSON file (default: stdin)")
	mode := flag.String("mode", "", "pipeline mode: agents or simple (default: from config)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	var data []byte
	if *file != "" {
		data, err = os.ReadFile(*file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("read metrics")
	}

	var client llm.Client
	if cfg.LLM.Provider == "fake" || cfg.LLM.APIKey == "" {
		if cfg.LLM.Provider != "fake" {
			log.Warn().Msg("no API key configured; using fake generation backend")
		}
		client = llm.NewFakeClient()
	} else {
		client, err = llm.NewGeminiClient(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.RPS, cfg.LLM.Burst)
		if err != nil {
			log.Fatal().Err(err).Msg("create gemini client")
		}
	}
	defer client.Close()

	pipe := insight.New(client, insight.WithTimeout(cfg.TimeoutDuration()))

	runMode := cfg.Pipeline.Mode
	if *mode != "" {
		runMode = *mode
	}
	var report insight.Report
	if runMode == "simple" {
		report = pipe.GenerateLegacy(context.Background(), string(data))
	} else {
		report = pipe.Generate(context.Background(), string(data))
	}

	out, err := jsonutil.MarshalNoEscapeIndent(report, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode report")
	}
	fmt.Println(string(out))
}
