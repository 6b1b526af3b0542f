package hub

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/galsenai/french-wolof-translator/internal/testutil"
)

type fakeHub struct {
	mu        sync.Mutex
	token     string
	uploaded  map[string][]byte
	verified  []string
	commit    []map[string]json.RawMessage
	createdAs []string
	server    *httptest.Server
}

func newFakeHub(t *testing.T, token string) *fakeHub {
	t.Helper()
	h := &fakeHub{token: token, uploaded: make(map[string][]byte)}
	h.server = httptest.NewServer(http.HandlerFunc(h.serve(t)))
	t.Cleanup(h.server.Close)
	return h
}

func (h *fakeHub) serve(t *testing.T) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if strings.HasPrefix(r.URL.Path, "/lfs-upload/") {
			data, _ := io.ReadAll(r.Body)
			h.uploaded[strings.TrimPrefix(r.URL.Path, "/lfs-upload/")] = data
			return
		}

		authed := r.Header.Get("Authorization") == "Bearer "+h.token
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/resolve/main/"):
			if strings.HasSuffix(r.URL.Path, "missing.json") {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"Entry not found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"model":{"type":"BPE"}}`))

		case r.URL.Path == "/api/models":
			_, _ = w.Write([]byte(`[{"id":"` + r.URL.Query().Get("author") + `/wolof-nllb","downloads":12,"pipeline_tag":"translation"}]`))

		case !authed:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials in Authorization header"}`))

		case r.URL.Path == "/api/repos/create":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			id := body["organization"].(string) + "/" + body["name"].(string)
			for _, existing := range h.createdAs {
				if existing == id {
					w.WriteHeader(http.StatusConflict)
					_, _ = w.Write([]byte(`{"error":"You already created this model repo"}`))
					return
				}
			}
			h.createdAs = append(h.createdAs, id)

		case strings.HasSuffix(r.URL.Path, "/preupload/main"):
			var body struct {
				Files []struct {
					Path string `json:"path"`
				} `json:"files"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			var out []map[string]string
			for _, f := range body.Files {
				mode := "regular"
				if strings.HasSuffix(f.Path, ".safetensors") {
					mode = "lfs"
				}
				out = append(out, map[string]string{"path": f.Path, "uploadMode": mode})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"files": out})

		case strings.HasSuffix(r.URL.Path, ".git/info/lfs/objects/batch"):
			if r.Header.Get("Accept") != lfsMediaType {
				t.Errorf("lfs batch Accept = %q", r.Header.Get("Accept"))
			}
			var body struct {
				Objects []struct {
					OID  string `json:"oid"`
					Size int64  `json:"size"`
				} `json:"objects"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			var objs []map[string]interface{}
			for _, o := range body.Objects {
				objs = append(objs, map[string]interface{}{
					"oid":  o.OID,
					"size": o.Size,
					"actions": map[string]interface{}{
						"upload": map[string]interface{}{"href": h.server.URL + "/lfs-upload/" + o.OID},
						"verify": map[string]interface{}{"href": h.server.URL + "/lfs-verify"},
					},
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"objects": objs})

		case r.URL.Path == "/lfs-verify":
			var body struct {
				OID string `json:"oid"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			h.verified = append(h.verified, body.OID)

		case strings.HasSuffix(r.URL.Path, "/commit/main"):
			if r.Header.Get("Content-Type") != "application/x-ndjson" {
				t.Errorf("commit Content-Type = %q", r.Header.Get("Content-Type"))
			}
			sc := bufio.NewScanner(r.Body)
			sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
			for sc.Scan() {
				var m map[string]json.RawMessage
				if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
					t.Errorf("commit line: %v", err)
				}
				h.commit = append(h.commit, m)
			}
			_, _ = w.Write([]byte(`{"commitOid":"abc"}`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestDownload(t *testing.T) {
	h := newFakeHub(t, "hf_token")
	dir := t.TempDir()
	client := NewClient(h.server.URL, "")

	path, err := client.Download(context.Background(), "facebook/nllb-200-distilled-600M", "tokenizer.json", dir)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	testutil.AssertFileContains(t, path, `"BPE"`)

	_, err = client.Download(context.Background(), "facebook/nllb-200-distilled-600M", "missing.json", dir)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Download() error = %v, want 404 StatusError", err)
	}
	if statusErr.Message != "Entry not found" {
		t.Errorf("Message = %q", statusErr.Message)
	}
	testutil.AssertFileNotExists(t, filepath.Join(dir, "missing.json"))
}

func TestDownloadFromPublicHub(t *testing.T) {
	orig := hubDownload
	defer func() { hubDownload = orig }()

	var gotRepo, gotFile, gotToken, gotCache string
	hubDownload = func(repoID, filename, token, cacheDir string) (string, error) {
		gotRepo, gotFile, gotToken, gotCache = repoID, filename, token, cacheDir
		return filepath.Join(cacheDir, "snapshots", "main", filename), nil
	}

	dir := t.TempDir()
	path, err := NewClient("", "hf_token").Download(context.Background(), "facebook/nllb-200-distilled-600M", "tokenizer.json", dir)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if gotRepo != "facebook/nllb-200-distilled-600M" || gotFile != "tokenizer.json" || gotToken != "hf_token" || gotCache != dir {
		t.Errorf("hub download called with %q %q %q %q", gotRepo, gotFile, gotToken, gotCache)
	}
	if path != filepath.Join(dir, "snapshots", "main", "tokenizer.json") {
		t.Errorf("Download() = %q", path)
	}

	hubDownload = func(string, string, string, string) (string, error) { return "", errors.New("offline") }
	if _, err := NewClient("", "").Download(context.Background(), "facebook/nllb-200-distilled-600M", "tokenizer.json", dir); err == nil {
		t.Error("Download() expected error when the hub is unreachable")
	}
}

func TestListModels(t *testing.T) {
	h := newFakeHub(t, "hf_token")
	models, err := NewClient(h.server.URL, "").ListModels(context.Background(), "galsenai")
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 1 || models[0].ID != "galsenai/wolof-nllb" || models[0].Downloads != 12 {
		t.Errorf("ListModels() = %+v", models)
	}
}

func TestCreateRepoIsIdempotent(t *testing.T) {
	h := newFakeHub(t, "hf_token")
	client := NewClient(h.server.URL, "hf_token")

	for i := 0; i < 2; i++ {
		if err := client.CreateRepo(context.Background(), "galsen/wolof-nllb", false); err != nil {
			t.Fatalf("CreateRepo() attempt %d error = %v", i, err)
		}
	}
}

func TestUnauthorizedErrorDoesNotLeakToken(t *testing.T) {
	h := newFakeHub(t, "hf_token")
	client := NewClient(h.server.URL, "hf_wrong_secret")

	err := client.CreateRepo(context.Background(), "galsen/wolof-nllb", false)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("CreateRepo() error = %v, want ErrUnauthorized", err)
	}
	if strings.Contains(err.Error(), "hf_wrong_secret") || strings.Contains(err.Error(), h.server.URL) {
		t.Errorf("error leaks request details: %v", err)
	}
}

func TestUploadFolder(t *testing.T) {
	h := newFakeHub(t, "hf_token")
	dir := testutil.CreateCheckpointDirectory(t, t.TempDir(), "checkpoint")
	testutil.CreateTestFile(t, filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main"))
	testutil.CreateTestFile(t, filepath.Join(dir, "runs", "nllb-train", "train.jsonl"), []byte(`{"input_ids":[[4,2]]}`))
	testutil.CreateTestFile(t, filepath.Join(dir, "runs", "nllb-train", "manifest.yaml"), []byte("task: train\n"))

	client := NewClient(h.server.URL, "hf_token")
	if err := client.UploadFolder(context.Background(), "galsen/wolof-nllb", dir, "Upload model"); err != nil {
		t.Fatalf("UploadFolder() error = %v", err)
	}

	weights, err := os.ReadFile(filepath.Join(dir, "model.safetensors"))
	if err != nil {
		t.Fatal(err)
	}
	var uploaded []byte
	for _, data := range h.uploaded {
		uploaded = data
	}
	if len(h.uploaded) != 1 || !bytes.Equal(uploaded, weights) {
		t.Errorf("lfs uploads = %d objects", len(h.uploaded))
	}
	if len(h.verified) != 1 {
		t.Errorf("verified %d objects, want 1", len(h.verified))
	}

	var keys []string
	for _, line := range h.commit {
		var key string
		_ = json.Unmarshal(line["key"], &key)
		var value struct {
			Path    string `json:"path"`
			Summary string `json:"summary"`
		}
		_ = json.Unmarshal(line["value"], &value)
		if key == "header" {
			if value.Summary != "Upload model" {
				t.Errorf("summary = %q", value.Summary)
			}
			keys = append(keys, key)
			continue
		}
		keys = append(keys, key+":"+value.Path)
	}

	got := strings.Join(keys, ",")
	want := "header,file:config.json,file:generation_config.json,lfsFile:model.safetensors,file:tokenizer.json"
	if got != want {
		t.Errorf("commit lines = %s, want %s", got, want)
	}
}
