package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/ToneGuard/ToneGuard/pkg/common"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	EnableLatency  bool `mapstructure:"enable_latency"`
	EnableUpstream bool `mapstructure:"enable_upstream"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Rephrase   RephraseConfig   `mapstructure:"rephrase"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type ModerationConfig struct {
	Endpoint       string  `mapstructure:"endpoint"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Threshold      float64 `mapstructure:"threshold"`
}

type RephraseConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Provider       string  `mapstructure:"provider"`
	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	MaxNewTokens   int     `mapstructure:"max_new_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TopP           float64 `mapstructure:"top_p"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	VerifyToken    bool    `mapstructure:"verify_token"`
	Region         string  `mapstructure:"region"` // bedrock only
}

var globalConfig Config
var globalSecrets map[string]string

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues()

	// secrets.yaml is optional; credentials usually come from the environment
	globalSecrets = map[string]string{}
	var secrets map[string]string
	if err := loadConfigFile(configPath, "secrets", &secrets); err == nil {
		// viper lowercases keys; credential names are env-style upper case
		for k, v := range secrets {
			globalSecrets[strings.ToUpper(k)] = v
		}
	}

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(out, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Moderation.TimeoutSeconds == 0 {
		globalConfig.Moderation.TimeoutSeconds = 10
	}
	if globalConfig.Moderation.Threshold == 0 {
		globalConfig.Moderation.Threshold = analysis.ToxicityThreshold
	}
	if globalConfig.Rephrase.TimeoutSeconds == 0 {
		globalConfig.Rephrase.TimeoutSeconds = 30
	}
	if globalConfig.Rephrase.MaxNewTokens == 0 {
		globalConfig.Rephrase.MaxNewTokens = 150
	}
	if globalConfig.Rephrase.Temperature == 0 {
		globalConfig.Rephrase.Temperature = 0.7
	}
	if globalConfig.Rephrase.TopP == 0 {
		globalConfig.Rephrase.TopP = 0.9
	}
	if globalConfig.Rephrase.Provider == "" {
		globalConfig.Rephrase.Provider = common.DefaultRephraseProvider
	}
}

func GetConfig() *Config {
	return &globalConfig
}

func GetSecrets() map[string]string {
	return globalSecrets
}
