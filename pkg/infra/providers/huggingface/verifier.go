package huggingface

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/infra/httpx"
)

//go:generate mockery --name=TokenVerifier --dir=. --output=./mocks --filename=token_verifier_mock.go --case=underscore --with-expecter

// TokenVerifier checks that an inference token is accepted by the API,
// mirroring a whoami call.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) error
}

type tokenVerifier struct {
	httpClient httpx.Client
	endpoint   string
}

func NewTokenVerifier(httpClient httpx.Client) TokenVerifier {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &tokenVerifier{
		httpClient: httpClient,
		endpoint:   WhoamiURL,
	}
}

func NewTokenVerifierWithEndpoint(httpClient httpx.Client, endpoint string) TokenVerifier {
	v := &tokenVerifier{
		httpClient: httpClient,
		endpoint:   WhoamiURL,
	}
	if endpoint != "" {
		v.endpoint = endpoint
	}
	return v
}

func (v *tokenVerifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return domain.NewMissingCredentialError(target + " token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		if httpx.IsTimeout(err) {
			return domain.NewTimeoutError(target, err)
		}
		return fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewAPIStatusError(target, resp.StatusCode, fmt.Errorf("token verification failed"))
	}
	return nil
}
