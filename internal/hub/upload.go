package hub

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	uploadModeLFS     = "lfs"
	uploadModeRegular = "regular"
	lfsMediaType      = "application/vnd.git-lfs+json"
	sampleSize        = 512
)

type localFile struct {
	path   string // repository path, slash separated
	abs    string
	size   int64
	sha256 string
	sample string
	mode   string
}

// UploadFolder commits every regular file below dir to the main branch of
// repoID. Hidden files and directories are skipped.
func (c *Client) UploadFolder(ctx context.Context, repoID, dir, message string) error {
	files, err := collectFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("nothing to upload in %s", dir)
	}

	if err := c.preupload(ctx, repoID, files); err != nil {
		return err
	}

	var lfs []*localFile
	for _, f := range files {
		if f.mode == uploadModeLFS {
			lfs = append(lfs, f)
		}
	}
	if len(lfs) > 0 {
		if err := c.uploadLFS(ctx, repoID, lfs); err != nil {
			return err
		}
	}

	return c.commit(ctx, repoID, message, files)
}

// localOnlyDirs are top-level directories of an output directory that hold
// training run data rather than model files.
var localOnlyDirs = map[string]bool{"runs": true}

func collectFiles(dir string) ([]*localFile, error) {
	var files []*localFile
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() && filepath.Dir(p) == filepath.Clean(dir) && localOnlyDirs[d.Name()] {
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		f, err := describeFile(p)
		if err != nil {
			return err
		}
		f.path = filepath.ToSlash(rel)
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

func describeFile(p string) (*localFile, error) {
	fh, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	h := sha256.New()
	head := make([]byte, sampleSize)
	n, err := io.ReadFull(fh, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	h.Write(head[:n])
	rest, err := io.Copy(h, fh)
	if err != nil {
		return nil, err
	}

	return &localFile{
		abs:    p,
		size:   int64(n) + rest,
		sha256: hex.EncodeToString(h.Sum(nil)),
		sample: base64.StdEncoding.EncodeToString(head[:n]),
	}, nil
}

func (c *Client) preupload(ctx context.Context, repoID string, files []*localFile) error {
	type entry struct {
		Path   string `json:"path"`
		Size   int64  `json:"size"`
		Sample string `json:"sample"`
	}
	req := struct {
		Files []entry `json:"files"`
	}{}
	for _, f := range files {
		req.Files = append(req.Files, entry{Path: f.path, Size: f.size, Sample: f.sample})
	}

	var resp struct {
		Files []struct {
			Path       string `json:"path"`
			UploadMode string `json:"uploadMode"`
		} `json:"files"`
	}
	u := fmt.Sprintf("%s/api/models/%s/preupload/main", c.endpoint, repoID)
	if err := c.doJSON(ctx, "preupload", http.MethodPost, u, req, &resp); err != nil {
		return err
	}

	modes := make(map[string]string, len(resp.Files))
	for _, f := range resp.Files {
		modes[f.Path] = f.UploadMode
	}
	for _, f := range files {
		f.mode = modes[f.path]
		if f.mode == "" {
			f.mode = uploadModeRegular
		}
	}
	return nil
}

type lfsAction struct {
	Href   string            `json:"href"`
	Header map[string]string `json:"header"`
}

func (c *Client) uploadLFS(ctx context.Context, repoID string, files []*localFile) error {
	type object struct {
		OID  string `json:"oid"`
		Size int64  `json:"size"`
	}
	req := struct {
		Operation string   `json:"operation"`
		Transfers []string `json:"transfers"`
		Objects   []object `json:"objects"`
		HashAlgo  string   `json:"hash_algo"`
	}{Operation: "upload", Transfers: []string{"basic"}, HashAlgo: "sha256"}
	byOID := make(map[string]*localFile, len(files))
	for _, f := range files {
		req.Objects = append(req.Objects, object{OID: f.sha256, Size: f.size})
		byOID[f.sha256] = f
	}

	var resp struct {
		Objects []struct {
			OID     string `json:"oid"`
			Size    int64  `json:"size"`
			Actions *struct {
				Upload *lfsAction `json:"upload"`
				Verify *lfsAction `json:"verify"`
			} `json:"actions"`
			Error *struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		} `json:"objects"`
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/%s.git/info/lfs/objects/batch", c.endpoint, repoID)
	httpReq, err := c.newRequest(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", lfsMediaType)
	httpReq.Header.Set("Content-Type", lfsMediaType)
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("hub lfs batch failed: %w", err)
	}
	defer httpResp.Body.Close()
	if err := checkStatus("lfs batch", httpResp); err != nil {
		return err
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode lfs batch response: %w", err)
	}

	for _, obj := range resp.Objects {
		if obj.Error != nil {
			return &StatusError{Op: "lfs batch", StatusCode: obj.Error.Code, Message: obj.Error.Message}
		}
		// Objects without actions are already stored.
		if obj.Actions == nil || obj.Actions.Upload == nil {
			continue
		}
		f, ok := byOID[obj.OID]
		if !ok {
			return fmt.Errorf("lfs batch returned unknown object %s", obj.OID)
		}
		if err := c.putObject(ctx, obj.Actions.Upload, f); err != nil {
			return err
		}
		if obj.Actions.Verify != nil {
			if err := c.verifyObject(ctx, obj.Actions.Verify, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Client) putObject(ctx context.Context, action *lfsAction, f *localFile) error {
	fh, err := os.Open(f.abs)
	if err != nil {
		return err
	}
	defer fh.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, action.Href, fh)
	if err != nil {
		return err
	}
	req.ContentLength = f.size
	for k, v := range action.Header {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", f.path, err)
	}
	defer resp.Body.Close()
	return checkStatus("lfs upload", resp)
}

func (c *Client) verifyObject(ctx context.Context, action *lfsAction, f *localFile) error {
	data, err := json.Marshal(map[string]interface{}{"oid": f.sha256, "size": f.size})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, action.Href, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", lfsMediaType)
	for k, v := range action.Header {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to verify %s: %w", f.path, err)
	}
	defer resp.Body.Close()
	return checkStatus("lfs verify", resp)
}

func (c *Client) commit(ctx context.Context, repoID, message string, files []*localFile) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	line := func(key string, value interface{}) error {
		return enc.Encode(map[string]interface{}{"key": key, "value": value})
	}

	if err := line("header", map[string]string{"summary": message, "description": ""}); err != nil {
		return err
	}
	for _, f := range files {
		var err error
		if f.mode == uploadModeLFS {
			err = line("lfsFile", map[string]interface{}{
				"path": f.path, "algo": "sha256", "oid": f.sha256, "size": f.size,
			})
		} else {
			var content []byte
			content, err = os.ReadFile(f.abs)
			if err == nil {
				err = line("file", map[string]string{
					"path": f.path, "encoding": "base64", "content": base64.StdEncoding.EncodeToString(content),
				})
			}
		}
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.path, err)
		}
	}

	u := fmt.Sprintf("%s/api/models/%s/commit/main", c.endpoint, repoID)
	req, err := c.newRequest(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hub commit failed: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus("commit", resp)
}
