package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func newRowsServer(t *testing.T, total int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/splits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dataset") != "galsenai/french-wolof-translation" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"splits": []map[string]string{
				{"dataset": "galsenai/french-wolof-translation", "config": "default", "split": "train"},
			},
		})
	})
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))
		if length > DefaultPageSize {
			t.Errorf("page length = %d, want <= %d", length, DefaultPageSize)
		}

		var rows []map[string]interface{}
		for i := offset; i < total && i < offset+length; i++ {
			rows = append(rows, map[string]interface{}{
				"row_idx": i,
				"row": map[string]interface{}{
					"french": "bonjour " + strconv.Itoa(i),
					"wolof":  "salaam " + strconv.Itoa(i),
					"id":     i,
				},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"rows":           rows,
			"num_rows_total": total,
		})
	})
	return httptest.NewServer(mux)
}

func TestRowsClientLoadPages(t *testing.T) {
	server := newRowsServer(t, 250)
	defer server.Close()

	client := NewRowsClient(server.URL, "")
	dict, err := client.Load(context.Background(), "galsenai/french-wolof-translation")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	records := dict[SplitTrain]
	if len(records) != 250 {
		t.Fatalf("got %d records, want 250", len(records))
	}
	if records[249]["french"] != "bonjour 249" {
		t.Errorf("last record = %v", records[249])
	}
	if records[7]["id"] != "7" {
		t.Errorf("numeric column = %q, want %q", records[7]["id"], "7")
	}
}

func TestRowsClientUnknownDataset(t *testing.T) {
	server := newRowsServer(t, 1)
	defer server.Close()

	client := NewRowsClient(server.URL, "")
	_, err := client.Load(context.Background(), "nobody/nothing")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Load() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestRowsClientSendsToken(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		http.Error(w, "gated", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, _ = NewRowsClient(server.URL, "hf_secret").Load(context.Background(), "x/y")
	if got != "Bearer hf_secret" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestToRecordFlattensNested(t *testing.T) {
	r := toRecord(map[string]interface{}{
		"translation": map[string]interface{}{"fr": "merci", "wo": "jërëjëf"},
		"skip":        nil,
	})
	if r["translation.fr"] != "merci" || r["translation.wo"] != "jërëjëf" {
		t.Errorf("toRecord() = %v", r)
	}
	if _, ok := r["skip"]; ok {
		t.Error("nil values should be dropped")
	}
}
