// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig is the mediator's full runtime configuration.
type AppConfig struct {
	ServiceName string `mapstructure:"service_name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Host        string `mapstructure:"host" validate:"required"`
	Port        int    `mapstructure:"port" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"required"`
	LogFilePath string `mapstructure:"log_file_path"`

	ClientSampleRate int `mapstructure:"client_sample_rate" validate:"required"`
	ServerSampleRate int `mapstructure:"server_sample_rate" validate:"required"`

	UpstreamConnectTimeout time.Duration `mapstructure:"upstream_connect_timeout" validate:"required"`
	UpstreamCloseTimeout   time.Duration `mapstructure:"upstream_close_timeout" validate:"required"`
	TaskDrainTimeout       time.Duration `mapstructure:"task_drain_timeout" validate:"required"`

	// TranscribeUserAudioInLiveMode records whether live-mode user audio
	// should be enriched. No component reads it: BulkEnrichmentTask never
	// transcribes live-mode user audio, whatever its value, and the upstream
	// live session's own transcript is trusted instead.
	TranscribeUserAudioInLiveMode bool `mapstructure:"transcribe_user_audio_in_live_mode"`

	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	AnthropicAPIKey  string `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key"`
	GoogleTTSAPIKey  string `mapstructure:"google_tts_api_key"`
	DeepgramAPIKey   string `mapstructure:"deepgram_api_key"`

	LiveModelID               string `mapstructure:"live_model_id" validate:"required"`
	TranscriptionModelID      string `mapstructure:"transcription_model_id" validate:"required"`
	TranslationModelID        string `mapstructure:"translation_model_id" validate:"required"`
	HintModelID               string `mapstructure:"hint_model_id" validate:"required"`
	StreamingTranscriptionOn  bool   `mapstructure:"streaming_transcription_enabled"`
}

// InitConfig boots viper with a double-underscore key delimiter, an
// optional .env-style config file located by ENV_PATH, and environment
// variables as the final override.
func InitConfig() (*AppConfig, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if path := os.Getenv("ENV_PATH"); path != "" {
		v.SetConfigFile(path)
	}

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "mediator")
	v.SetDefault("VERSION", "0.1.0")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_PATH", "")

	v.SetDefault("CLIENT_SAMPLE_RATE", 16000)
	v.SetDefault("SERVER_SAMPLE_RATE", 24000)

	v.SetDefault("UPSTREAM_CONNECT_TIMEOUT", 5*time.Second)
	v.SetDefault("UPSTREAM_CLOSE_TIMEOUT", 1*time.Second)
	v.SetDefault("TASK_DRAIN_TIMEOUT", 1*time.Second)

	v.SetDefault("TRANSCRIBE_USER_AUDIO_IN_LIVE_MODE", false)
	v.SetDefault("STREAMING_TRANSCRIPTION_ENABLED", false)

	v.SetDefault("LIVE_MODEL_ID", "gemini-2.0-flash-exp")
	v.SetDefault("TRANSCRIPTION_MODEL_ID", "gemini-2.0-flash")
	v.SetDefault("TRANSLATION_MODEL_ID", "gemini-2.0-flash")
	v.SetDefault("HINT_MODEL_ID", "gemini-2.0-flash")
}
