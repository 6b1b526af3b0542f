package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the largest page the datasets-server returns.
const DefaultPageSize = 100

// StatusError reports a non-2xx response from the datasets-server.
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("datasets-server %s returned status %d", e.Path, e.StatusCode)
}

// RowsClient reads datasets through the Hugging Face datasets-server API.
type RowsClient struct {
	endpoint string
	token    string
	client   *http.Client
	pageSize int
}

// NewRowsClient creates a client for the datasets-server at endpoint. The
// token is only needed for gated datasets.
func NewRowsClient(endpoint, token string) *RowsClient {
	return &RowsClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 60 * time.Second},
		pageSize: DefaultPageSize,
	}
}

type splitsResponse struct {
	Splits []struct {
		Dataset string `json:"dataset"`
		Config  string `json:"config"`
		Split   string `json:"split"`
	} `json:"splits"`
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int                    `json:"row_idx"`
		Row    map[string]interface{} `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Load fetches every split of the dataset's default configuration.
func (c *RowsClient) Load(ctx context.Context, name string) (DatasetDict, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("dataset name is required")
	}

	var splits splitsResponse
	if err := c.get(ctx, "/splits", url.Values{"dataset": {name}}, &splits); err != nil {
		return nil, fmt.Errorf("failed to list splits of %s: %w", name, err)
	}
	if len(splits.Splits) == 0 {
		return nil, fmt.Errorf("dataset %s has no splits", name)
	}

	configName := splits.Splits[0].Config
	for _, s := range splits.Splits {
		if s.Config == "default" {
			configName = s.Config
			break
		}
	}

	dict := make(DatasetDict)
	for _, s := range splits.Splits {
		if s.Config != configName {
			continue
		}
		records, err := c.loadSplit(ctx, name, configName, s.Split)
		if err != nil {
			return nil, fmt.Errorf("failed to load split %s of %s: %w", s.Split, name, err)
		}
		dict[s.Split] = records
	}
	return dict, nil
}

func (c *RowsClient) loadSplit(ctx context.Context, name, configName, split string) ([]Record, error) {
	var records []Record
	for offset := 0; ; offset += c.pageSize {
		var page rowsResponse
		params := url.Values{
			"dataset": {name},
			"config":  {configName},
			"split":   {split},
			"offset":  {strconv.Itoa(offset)},
			"length":  {strconv.Itoa(c.pageSize)},
		}
		if err := c.get(ctx, "/rows", params, &page); err != nil {
			return nil, err
		}
		for _, row := range page.Rows {
			records = append(records, toRecord(row.Row))
		}
		if len(page.Rows) == 0 || offset+len(page.Rows) >= page.NumRowsTotal {
			return records, nil
		}
	}
}

func (c *RowsClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Path: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// toRecord flattens a row into string columns. Nested objects such as
// {"translation": {"fr": ..., "wo": ...}} become "translation.fr" etc.
func toRecord(row map[string]interface{}) Record {
	r := make(Record, len(row))
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := row[k].(type) {
		case nil:
		case string:
			r[k] = v
		case map[string]interface{}:
			for nk, nv := range toRecord(v) {
				r[k+"."+nk] = nv
			}
		default:
			r[k] = fmt.Sprint(v)
		}
	}
	return r
}
