package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const viewerQuery = `query Viewer { viewer { id entity username } }`

const upsertBucketMutation = `mutation UpsertBucket($id: String, $name: String, $project: String, $entity: String, $displayName: String, $config: JSONString) {
  upsertBucket(input: {id: $id, name: $name, modelName: $project, entityName: $entity, displayName: $displayName, config: $config}) {
    bucket { id name displayName project { name entity { name } } }
  }
}`

// WandbClient talks to the Weights & Biases GraphQL API.
type WandbClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	entity   string
}

// NewWandbClient creates a client. An empty endpoint selects DefaultEndpoint.
func NewWandbClient(endpoint, apiKey string) *WandbClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &WandbClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Entity returns the user entity resolved by Login.
func (c *WandbClient) Entity() string {
	return c.entity
}

// Login verifies the API key and resolves the default entity.
func (c *WandbClient) Login(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: no API key configured", ErrUnauthorized)
	}

	var out struct {
		Viewer *struct {
			ID       string `json:"id"`
			Entity   string `json:"entity"`
			Username string `json:"username"`
		} `json:"viewer"`
	}
	if err := c.do(ctx, viewerQuery, nil, &out); err != nil {
		return err
	}
	if out.Viewer == nil {
		return ErrUnauthorized
	}
	c.entity = out.Viewer.Entity
	return nil
}

// StartRun creates a run in project. The run id is random and the display
// name is the given name.
func (c *WandbClient) StartRun(ctx context.Context, project, name string, cfg map[string]interface{}) (Run, error) {
	id := newRunID()

	vars := map[string]interface{}{
		"name":        id,
		"project":     project,
		"displayName": name,
	}
	if c.entity != "" {
		vars["entity"] = c.entity
	}
	if len(cfg) > 0 {
		wrapped := make(map[string]interface{}, len(cfg))
		for k, v := range cfg {
			wrapped[k] = map[string]interface{}{"value": v}
		}
		data, err := json.Marshal(wrapped)
		if err != nil {
			return Run{}, fmt.Errorf("failed to encode run config: %w", err)
		}
		vars["config"] = string(data)
	}

	var out struct {
		UpsertBucket struct {
			Bucket struct {
				Name        string `json:"name"`
				DisplayName string `json:"displayName"`
				Project     struct {
					Name   string `json:"name"`
					Entity struct {
						Name string `json:"name"`
					} `json:"entity"`
				} `json:"project"`
			} `json:"bucket"`
		} `json:"upsertBucket"`
	}
	if err := c.do(ctx, upsertBucketMutation, vars, &out); err != nil {
		return Run{}, fmt.Errorf("failed to create run: %w", err)
	}

	b := out.UpsertBucket.Bucket
	run := Run{ID: b.Name, Name: b.DisplayName, Project: b.Project.Name, Entity: b.Project.Entity.Name}
	if run.ID == "" {
		run.ID = id
	}
	if run.Project == "" {
		run.Project = project
	}
	return run, nil
}

func (c *WandbClient) do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/graphql", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("wandb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wandb returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode wandb response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("wandb: %s", envelope.Errors[0].Message)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
