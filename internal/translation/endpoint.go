package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// EndpointGenerator calls an inference server that accepts token ids and
// returns generated sequences:
//
//	{"inputs":{"input_ids":[...]},"parameters":{"max_length":30,"num_beams":1}}
//	{"sequences":[[...]]}
//
// Repeated failures open a circuit breaker so a dead server fails fast.
type EndpointGenerator struct {
	endpoint string
	token    string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewEndpointGenerator creates a generator posting to endpoint.
func NewEndpointGenerator(endpoint, token string) *EndpointGenerator {
	return &EndpointGenerator{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 2 * time.Minute},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "inference-endpoint",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

type endpointRequest struct {
	Inputs struct {
		InputIDs [][]int `json:"input_ids"`
	} `json:"inputs"`
	Parameters struct {
		MaxLength     int  `json:"max_length"`
		NumBeams      int  `json:"num_beams"`
		EarlyStopping bool `json:"early_stopping"`
	} `json:"parameters"`
}

type endpointResponse struct {
	Sequences     [][]int `json:"sequences"`
	GeneratedText string  `json:"generated_text"`
}

// Generate implements Generator.
func (g *EndpointGenerator) Generate(ctx context.Context, req Request) (Generation, error) {
	var body endpointRequest
	body.Inputs.InputIDs = [][]int{req.InputIDs}
	body.Parameters.MaxLength = req.MaxLength
	body.Parameters.NumBeams = req.NumBeams
	body.Parameters.EarlyStopping = req.NumBeams > 1

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.post(ctx, body)
	})
	if err != nil {
		return Generation{}, fmt.Errorf("inference endpoint: %w", err)
	}

	resp := out.(*endpointResponse)
	if len(resp.Sequences) > 0 {
		return Generation{TokenIDs: resp.Sequences[0]}, nil
	}
	if resp.GeneratedText != "" {
		return Generation{Text: resp.GeneratedText}, nil
	}
	return Generation{}, fmt.Errorf("inference endpoint returned no sequences")
}

func (g *EndpointGenerator) post(ctx context.Context, body endpointRequest) (*endpointResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out endpointResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
