// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Command server boots the mediator's HTTP/WebSocket entrypoint: one
// upgraded connection per practice session, handed to a fresh
// session.Orchestrator.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"github.com/rapidaai/mediator/pkg/commons"
	"github.com/rapidaai/mediator/pkg/config"
	"github.com/rapidaai/mediator/providers/hint"
	"github.com/rapidaai/mediator/providers/live"
	"github.com/rapidaai/mediator/providers/llmtext"
	"github.com/rapidaai/mediator/providers/respond"
	"github.com/rapidaai/mediator/providers/stt"
	"github.com/rapidaai/mediator/providers/translate"
	"github.com/rapidaai/mediator/providers/tts"
	"github.com/rapidaai/mediator/providers/vad"
	"github.com/rapidaai/mediator/session"
	"github.com/rapidaai/mediator/socket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := commons.NewApplicationLogger(cfg.LogLevel, cfg.LogFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}

	deps, err := buildDependencies(context.Background(), cfg, logger)
	if err != nil {
		logger.Errorf("building dependencies: %v", err)
		os.Exit(1)
	}
	orchestrator := session.New(deps)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"*"},
	}))

	registerPracticeRoute(engine, orchestrator, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Infof("%s %s listening on %s", cfg.ServiceName, cfg.Version, addr)
	if err := engine.Run(addr); err != nil {
		logger.Errorf("server exited: %v", err)
		os.Exit(1)
	}
}

// registerPracticeRoute wires the single WebSocket endpoint a practice
// client connects to, reading its session parameters from the query
// string, mirroring the /practice route
// (multivox/app.py's practice_session).
func registerPracticeRoute(engine *gin.Engine, orchestrator *session.Orchestrator, logger commons.Logger) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/api/practice", func(c *gin.Context) {
		mode := session.ModeLive
		if c.Query("modality") == "step-by-step" || c.Query("mode") == "step-by-step" {
			mode = session.ModeStepByStep
		}

		req := session.Request{
			Mode:             mode,
			PracticeLanguage: c.Query("practice_language"),
			NativeLanguage:   c.Query("native_language"),
			AudioModality:    c.Query("audio") == "true",
			Scenario:         c.Query("scenario"),
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("websocket upgrade failed: %v", err)
			return
		}

		sock := socket.New(conn, logger)
		if err := orchestrator.Run(c.Request.Context(), sock, req); err != nil {
			logger.Warnf("practice session ended with error: %v", err)
		}
	})
}

// buildDependencies constructs every provider client the orchestrator
// needs, sharing a single genai.Client across the STT, respond, and live
// providers since all three are Gemini-backed.
func buildDependencies(ctx context.Context, cfg *config.AppConfig, logger commons.Logger) (session.Dependencies, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		return session.Dependencies{}, fmt.Errorf("building genai client: %w", err)
	}

	ttsClient, err := texttospeech.NewClient(ctx)
	if err != nil {
		return session.Dependencies{}, fmt.Errorf("building text-to-speech client: %w", err)
	}

	var textClient llmtext.Client
	if cfg.AnthropicAPIKey != "" {
		textClient = llmtext.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.HintModelID)
	} else {
		textClient = llmtext.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.HintModelID)
	}

	const providerCacheCapacity = 512

	return session.Dependencies{
		Connector:   live.NewGeminiConnector(genaiClient),
		Transcriber: stt.NewGeminiTranscriber(genaiClient, cfg.TranscriptionModelID),
		Translator:  translate.NewCachedTranslator(translate.New(textClient), providerCacheCapacity),
		Hinter:      hint.New(textClient),
		Responder:   respond.NewGeminiResponder(genaiClient, cfg.TranscriptionModelID),
		Synthesizer: tts.NewCachedSynthesizer(tts.NewGoogleSynthesizer(ttsClient), providerCacheCapacity),
		VAD:         vad.NewRMSProvider(0.01),
		Logger:      logger,

		LiveModel: cfg.LiveModelID,

		ClientSampleRate:       cfg.ClientSampleRate,
		UpstreamConnectTimeout: cfg.UpstreamConnectTimeout,
		UpstreamCloseTimeout:   cfg.UpstreamCloseTimeout,
		TaskDrainTimeout:       cfg.TaskDrainTimeout,
	}, nil
}
