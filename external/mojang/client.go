package mojang

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/platform/resilience"
	"github.com/mba-league/mbabot/internal/usecase"
)

const (
	defaultBaseURL = "https://api.mojang.com"
	maxBodyBytes   = 1 << 20
)

var errMojangTransient = crerr.New("mojang transient failure")

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client resolves Minecraft usernames against the Mojang profile API.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL:        baseURL,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type profilePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolveUsername looks up the profile behind a username. Unknown
// usernames resolve to an empty profile rather than an error.
func (c *Client) ResolveUsername(ctx context.Context, username string) (usecase.MinecraftProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return usecase.MinecraftProfile{}, fmt.Errorf("username is required")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "mojang circuit breaker rejected request", "state", c.breaker.State())
			return usecase.MinecraftProfile{}, fmt.Errorf("%w: profile directory is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + "/users/profiles/minecraft/" + username

	key := strings.ToLower(username)
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errMojangTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return usecase.MinecraftProfile{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return usecase.MinecraftProfile{}, fmt.Errorf("unexpected response payload type %T", out)
	}
	if len(raw) == 0 {
		return usecase.MinecraftProfile{}, nil
	}

	var payload profilePayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.MinecraftProfile{}, fmt.Errorf("decode mojang payload: %w", err)
	}

	return usecase.MinecraftProfile{
		Username: payload.Name,
		UUID:     payload.ID,
	}, nil
}

// executeRequest returns the raw body, or an empty body for profiles
// that do not exist.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		req.SetRequestURI(fullURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("accept", "application/json")

		err := c.httpClient.DoTimeout(req, resp, c.timeout)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errMojangTransient, err)
		} else {
			status := resp.StatusCode()
			switch {
			case status == http.StatusNotFound || status == http.StatusNoContent:
				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
				return nil, nil
			case status >= 200 && status < 300:
				body := resp.Body()
				if len(body) > maxBodyBytes {
					body = body[:maxBodyBytes]
				}
				raw := make([]byte, len(body))
				copy(raw, body)
				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
				return raw, nil
			case isRetryableStatus(status):
				lastErr = fmt.Errorf("%w: mojang status=%d", errMojangTransient, status)
			default:
				lastErr = fmt.Errorf("mojang status=%d body=%s", status, abbreviateBody(resp.Body()))
				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
				return nil, lastErr
			}
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("mojang request failed")
	}
	c.logger.WarnContext(ctx, "mojang request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}
