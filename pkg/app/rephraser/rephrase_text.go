package rephraser

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ToneGuard/ToneGuard/pkg/cache"
	"github.com/ToneGuard/ToneGuard/pkg/config"
	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
	"github.com/ToneGuard/ToneGuard/pkg/infra/prometheus"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/factory"
)

//go:generate mockery --name=RephraseText --dir=. --output=./mocks --filename=rephrase_text_mock.go --case=underscore --with-expecter

type RephraseText interface {
	Rephrase(ctx context.Context, req Request) (*analysis.RephraseResult, error)
}

type Request struct {
	Text          string
	TokenOverride string
}

// credentialEnvNames maps each provider to the environment variable its
// credential is resolved from. Bedrock uses the AWS credential chain.
var credentialEnvNames = map[string]string{
	factory.ProviderHuggingFace: config.EnvHuggingFaceToken,
	factory.ProviderOpenAI:      "OPENAI_API_KEY",
	factory.ProviderAnthropic:   "ANTHROPIC_API_KEY",
	factory.ProviderGemini:      "GEMINI_API_KEY",
	factory.ProviderBedrock:     "",
}

type rephraseText struct {
	locator     factory.ProviderLocator
	credentials *config.CredentialResolver
	memo        *cache.Cache
	logger      *logrus.Logger
	cfg         config.RephraseConfig
	sf          singleflight.Group
}

func NewRephraseText(
	logger *logrus.Logger,
	locator factory.ProviderLocator,
	credentials *config.CredentialResolver,
	memo *cache.Cache,
	cfg config.RephraseConfig,
) RephraseText {
	return &rephraseText{
		locator:     locator,
		credentials: credentials,
		memo:        memo,
		logger:      logger,
		cfg:         cfg,
	}
}

func (r *rephraseText) Rephrase(ctx context.Context, req Request) (*analysis.RephraseResult, error) {
	provider := r.cfg.Provider
	if provider == "" {
		provider = factory.ProviderHuggingFace
	}

	var token string
	if envName := credentialEnvNames[provider]; envName != "" {
		resolved, source, ok := r.credentials.Resolve(envName, req.TokenOverride)
		if !ok {
			return nil, domain.NewMissingCredentialError(envName)
		}
		token = resolved
		r.logger.WithFields(logrus.Fields{
			"provider": provider,
			"source":   source,
		}).Debug("rephrase credential resolved")
	}

	cacheKey := cache.ResultKey(req.Text, strings.Join([]string{provider, r.cfg.Model, token}, "|"))
	if result, ok := r.memo.GetRephraseResult(ctx, cacheKey); ok {
		prometheus.CacheEvents.WithLabelValues(cache.RephraseTTLName, "hit").Inc()
		return result, nil
	}
	prometheus.CacheEvents.WithLabelValues(cache.RephraseTTLName, "miss").Inc()

	v, err, _ := r.sf.Do(cacheKey, func() (interface{}, error) {
		client, err := r.locator.Get(provider)
		if err != nil {
			return nil, err
		}

		providerConfig := &providers.Config{
			Credentials:  providers.Credentials{ApiKey: token},
			Model:        r.cfg.Model,
			Endpoint:     r.cfg.Endpoint,
			Region:       r.cfg.Region,
			MaxNewTokens: r.cfg.MaxNewTokens,
			Temperature:  r.cfg.Temperature,
			TopP:         r.cfg.TopP,
		}

		callCtx := ctx
		if r.cfg.TimeoutSeconds > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
			defer cancel()
		}

		start := time.Now()
		resp, err := client.Rephrase(callCtx, providerConfig, BuildPrompt(req.Text))
		if prometheus.GetConfig().EnableUpstream {
			prometheus.UpstreamLatency.WithLabelValues("inference").
				Observe(float64(time.Since(start).Milliseconds()))
		}
		if err != nil {
			prometheus.UpstreamRequestTotal.WithLabelValues("inference", "error").Inc()
			return nil, err
		}
		prometheus.UpstreamRequestTotal.WithLabelValues("inference", "success").Inc()

		result := &analysis.RephraseResult{
			Text:     resp.Response,
			Provider: provider,
			Model:    resp.Model,
			Usage: analysis.Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		}

		if saveErr := r.memo.SaveRephraseResult(ctx, cacheKey, result); saveErr != nil {
			r.logger.WithError(saveErr).Warn("failed to memoize rephrase result")
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result, ok := v.(*analysis.RephraseResult)
	if !ok {
		return nil, domain.NewInvalidResponseError("inference API", nil)
	}
	return result, nil
}
