package analyzer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ToneGuard/ToneGuard/pkg/cache"
	"github.com/ToneGuard/ToneGuard/pkg/config"
	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
	"github.com/ToneGuard/ToneGuard/pkg/infra/moderation"
	"github.com/ToneGuard/ToneGuard/pkg/infra/prometheus"
)

//go:generate mockery --name=AnalyzeText --dir=. --output=./mocks --filename=analyze_text_mock.go --case=underscore --with-expecter

type AnalyzeText interface {
	Analyze(ctx context.Context, req Request) (*analysis.ModerationResult, error)
}

type Request struct {
	Text        string
	KeyOverride string
}

type analyzeText struct {
	moderationClient moderation.Client
	credentials      *config.CredentialResolver
	memo             *cache.Cache
	logger           *logrus.Logger
	sf               singleflight.Group
}

func NewAnalyzeText(
	logger *logrus.Logger,
	moderationClient moderation.Client,
	credentials *config.CredentialResolver,
	memo *cache.Cache,
) AnalyzeText {
	return &analyzeText{
		moderationClient: moderationClient,
		credentials:      credentials,
		memo:             memo,
		logger:           logger,
	}
}

func (a *analyzeText) Analyze(ctx context.Context, req Request) (*analysis.ModerationResult, error) {
	// Credential check comes first so a missing key never costs a network
	// round trip.
	apiKey, source, ok := a.credentials.Resolve(config.EnvPerspectiveAPIKey, req.KeyOverride)
	if !ok {
		return nil, domain.NewMissingCredentialError("Perspective API key")
	}
	a.logger.WithField("source", source).Debug("moderation credential resolved")

	cacheKey := cache.ResultKey(req.Text, apiKey)
	if result, ok := a.memo.GetModerationResult(ctx, cacheKey); ok {
		prometheus.CacheEvents.WithLabelValues(cache.ModerationTTLName, "hit").Inc()
		return result, nil
	}
	prometheus.CacheEvents.WithLabelValues(cache.ModerationTTLName, "miss").Inc()

	v, err, _ := a.sf.Do(cacheKey, func() (interface{}, error) {
		start := time.Now()
		result, err := a.moderationClient.Analyze(ctx, req.Text, apiKey)
		if prometheus.GetConfig().EnableUpstream {
			prometheus.UpstreamLatency.WithLabelValues("moderation").
				Observe(float64(time.Since(start).Milliseconds()))
		}
		if err != nil {
			prometheus.UpstreamRequestTotal.WithLabelValues("moderation", "error").Inc()
			return nil, err
		}
		prometheus.UpstreamRequestTotal.WithLabelValues("moderation", "success").Inc()

		if saveErr := a.memo.SaveModerationResult(ctx, cacheKey, result); saveErr != nil {
			a.logger.WithError(saveErr).Warn("failed to memoize moderation result")
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result, ok := v.(*analysis.ModerationResult)
	if !ok {
		return nil, domain.NewInvalidResponseError("moderation API", nil)
	}
	return result, nil
}
