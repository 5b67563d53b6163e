package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/config"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/internal/otel"
)

// Client talks JSON to the remote commerce API. It never retries; the circuit
// breaker only fast-fails while the API keeps failing on the server side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.httpClient = h }
}

func NewClient(cfg config.Api, opts ...Option) *Client {
	cl := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(cl)
	}

	maxFailures := cfg.Breaker.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cl.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "commerce-api",
		Interval: cfg.Breaker.Interval,
		Timeout:  cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	return cl
}

type result struct {
	statusCode int
	body       []byte
}

// Do sends body as JSON to path and decodes a 2xx answer into out. out may be nil.
func (cl *Client) Do(
	c context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	out any,
) error {
	endpoint := cl.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	c, span := otel.Tracer.Start(
		c,
		"Client Do",
		trace.WithAttributes(
			attribute.String(log.KeyRequestMethod, method),
			attribute.String(log.KeyRequestURL, endpoint),
		),
	)
	defer span.End()

	c, requestID := log.EnsureRequestID(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Client Do").
		Str(log.KeyRequestID, requestID).
		Str(log.KeyRequestMethod, method).
		Str(log.KeyRequestURL, endpoint).
		Logger()

	var reader io.Reader
	if body != nil {
		logger = logger.With().Str(log.KeyProcess, "marshaling request body").Logger()
		payload, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed marshaling request body with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		reader = bytes.NewReader(payload)
		logger = logger.With().RawJSON(log.KeyRequestBody, payload).Logger()
	}

	logger = logger.With().Str(log.KeyProcess, "creating request").Logger()
	req, err := http.NewRequestWithContext(c, method, endpoint, reader)
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set(HeaderAccept, HeaderValueJson)
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set(HeaderContentType, HeaderValueJson)
	}

	logger = logger.With().Str(log.KeyProcess, "sending request").Logger()
	logger.Debug().Msg("sending request")
	start := time.Now()
	res, err := cl.breaker.Execute(func() (interface{}, error) {
		resp, err := cl.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed reading response body with error=%w", err)
		}
		r := result{statusCode: resp.StatusCode, body: b}
		if responseErr := responseError(method, endpoint, r); responseErr.Temporary() {
			return r, responseErr
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("commerce api unavailable with error=%w", err)
		} else {
			err = fmt.Errorf("failed sending request with error=%w", err)
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg(err.Error())
		return err
	}
	r := res.(result)
	span.SetAttributes(attribute.Int(log.KeyStatusCode, r.statusCode))
	logger = logger.With().
		Int(log.KeyStatusCode, r.statusCode).
		Dur("elapsed", time.Since(start)).
		Logger()
	logger.Debug().Msg("received response")

	if r.statusCode < http.StatusOK || r.statusCode >= http.StatusMultipleChoices {
		err = responseError(method, endpoint, r)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if out == nil {
		return nil
	}
	logger = logger.With().Str(log.KeyProcess, "decoding response body").Logger()
	if err = json.Unmarshal(r.body, out); err != nil {
		err = fmt.Errorf("%w: failed decoding response body with error=%w", commonErrors.ErrMalformedResponse, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().RawJSON(log.KeyResponseBody, r.body).Msg("decoded response body")
	return nil
}

func responseError(method string, endpoint string, r result) *commonErrors.ResponseError {
	msg := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}{}
	_ = json.Unmarshal(r.body, &msg)
	message := msg.Message
	if message == "" {
		message = msg.Error
	}
	return &commonErrors.ResponseError{
		StatusCode: r.statusCode,
		Method:     method,
		URL:        endpoint,
		Message:    message,
	}
}
