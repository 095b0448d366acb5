package story

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weave_generation_requests_total",
			Help: "Total number of requests to the generation API.",
		},
		[]string{"status"},
	)
	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weave_generation_request_duration_seconds",
			Help:    "Histogram of generation API request durations.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Generator is the boundary to the external text-completion service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SamplingBounds are the ranges the client randomizes its generation
// parameters within on every call. Randomized sampling is deliberate: it
// keeps repeated generations from converging on the same output. Keeping the
// bounds as configuration also lets tests pin the randomness down.
type SamplingBounds struct {
	TemperatureMin float64
	TemperatureMax float64
	TopPMin        float64
	TopPMax        float64
	TopKMin        int
	TopKMax        int
	MaxTokensMin   int
	MaxTokensMax   int
}

// GeminiClient talks to a Gemini-style generateContent endpoint. The API key
// travels as a query parameter, the prompt and sampling parameters as a JSON
// body. A non-2xx response or a payload without candidate text yields a
// *GenerationError; the client never retries on its own.
type GeminiClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	bounds  SamplingBounds
	http    *http.Client
	log     zerolog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGeminiClient(apiKey, baseURL string, timeout time.Duration, bounds SamplingBounds, log zerolog.Logger) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		bounds:  bounds,
		http:    &http.Client{},
		log:     log,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed reseeds the sampling randomness. Only tests use it.
func (c *GeminiClient) Seed(seed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rnd = rand.New(rand.NewSource(seed))
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	CandidateCount  int     `json:"candidateCount"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the raw generated text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := c.samplingConfig()
	payload, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", fmt.Errorf("encoding generation request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		generationRequestsTotal.WithLabelValues("error").Inc()
		return "", &GenerationError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		generationRequestsTotal.WithLabelValues("error").Inc()
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		generationRequestsTotal.WithLabelValues("error").Inc()
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		generationRequestsTotal.WithLabelValues("error").Inc()
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: "malformed generation response"}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		generationRequestsTotal.WithLabelValues("error").Inc()
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: "generation response contains no candidate text"}
	}

	generationRequestsTotal.WithLabelValues("ok").Inc()
	c.log.Debug().
		Float64("temperature", cfg.Temperature).
		Float64("top_p", cfg.TopP).
		Int("top_k", cfg.TopK).
		Int("max_tokens", cfg.MaxOutputTokens).
		Dur("duration", time.Since(start)).
		Msg("generation request completed")

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func (c *GeminiClient) samplingConfig() generationConfig {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.bounds
	return generationConfig{
		Temperature:     b.TemperatureMin + c.rnd.Float64()*(b.TemperatureMax-b.TemperatureMin),
		MaxOutputTokens: b.MaxTokensMin + c.rnd.Intn(b.MaxTokensMax-b.MaxTokensMin+1),
		TopP:            b.TopPMin + c.rnd.Float64()*(b.TopPMax-b.TopPMin),
		TopK:            b.TopKMin + c.rnd.Intn(b.TopKMax-b.TopKMin+1),
		CandidateCount:  1,
	}
}
