package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ikit/internal/history"
)

type fakeUploadAPI struct {
	mu     sync.Mutex
	fields []map[string]string
}

func (f *fakeUploadAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for key, values := range r.MultipartForm.Value {
			fields[key] = values[0]
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		_ = file.Close()

		f.mu.Lock()
		f.fields = append(f.fields, fields)
		f.mu.Unlock()

		name := fields["fileName"]
		w.Header().Set("X-Ik-Requestid", "req-"+name)
		if strings.HasPrefix(name, "bad") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"File type not allowed."}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fileId":   "id-" + name,
			"name":     name,
			"url":      "https://ik.example.com/e" + fields["folder"] + "/" + name,
			"filePath": fields["folder"] + "/" + name,
			"size":     len(data),
		})
	}
}

func TestUploadCommandRecordsHistory(t *testing.T) {
	api := &fakeUploadAPI{}
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	env := setupCLITestEnv(t, server.URL)
	first := filepath.Join(env.baseDir, "photos", "first photo.jpg")
	second := filepath.Join(env.baseDir, "photos", "second.png")
	writeFile(t, first, "jpeg-bytes")
	writeFile(t, second, "png-bytes!")

	out, _, err := runCLI(t, []string{"upload", first, second, "--folder", "products/summer", "--tag", "Sale Items", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	var rows []uploadRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].FileName != "first_photo.jpg" || rows[0].Outcome != "succeeded" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[0].URL != "https://ik.example.com/e/products/summer/first_photo.jpg" {
		t.Fatalf("unexpected url %q", rows[0].URL)
	}
	if rows[1].Size != int64(len("png-bytes!")) || rows[1].RequestID != "req-second.png" {
		t.Fatalf("unexpected second row %+v", rows[1])
	}

	api.mu.Lock()
	for _, fields := range api.fields {
		if fields["publicKey"] != "public_key_test" {
			t.Fatalf("publicKey = %q", fields["publicKey"])
		}
		if fields["tags"] != "catalog,sale_items" {
			t.Fatalf("tags = %q", fields["tags"])
		}
		if fields["folder"] != "/products/summer" {
			t.Fatalf("folder = %q", fields["folder"])
		}
		if fields["signature"] == "" || fields["token"] == "" || fields["expire"] == "" {
			t.Fatalf("missing auth fields: %v", fields)
		}
	}
	api.mu.Unlock()

	store, err := history.Open(context.Background(), env.historyDB)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()
	found, err := store.FindByFileID(context.Background(), "id-second.png")
	if err != nil || found == nil {
		t.Fatalf("expected history entry, got %v, %v", found, err)
	}
	if found.LocalPath != second || found.Folder != "/products/summer" {
		t.Fatalf("unexpected entry %+v", found)
	}
}

func TestUploadCommandReportsRejectedFiles(t *testing.T) {
	api := &fakeUploadAPI{}
	server := httptest.NewServer(api.handler(t))
	defer server.Close()

	env := setupCLITestEnv(t, server.URL)
	good := filepath.Join(env.baseDir, "good.jpg")
	bad := filepath.Join(env.baseDir, "bad.exe")
	writeFile(t, good, "ok")
	writeFile(t, bad, "nope")

	out, _, err := runCLI(t, []string{"upload", good, bad}, env.configPath)
	if err == nil {
		t.Fatal("expected error for rejected upload")
	}
	requireContains(t, err.Error(), "1 of 2 uploads did not succeed")
	requireContains(t, out, "File type not allowed.")
	requireContains(t, out, "1 succeeded, 1 rejected, 0 failed")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	outcomes := map[string]string{}
	for _, entry := range entries {
		outcomes[entry.FileName] = entry.Outcome
	}
	if outcomes["good.jpg"] != "succeeded" || outcomes["bad.exe"] != "rejected" {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
	for _, entry := range entries {
		if entry.FileName == "bad.exe" && entry.RequestID != "req-bad.exe" {
			t.Fatalf("rejected entry lost request id: %+v", entry)
		}
	}
}

func TestUploadCommandMissingFile(t *testing.T) {
	env := setupCLITestEnv(t, "")

	missing := filepath.Join(env.baseDir, "missing.jpg")
	out, _, err := runCLI(t, []string{"upload", missing}, env.configPath)
	if err == nil {
		t.Fatal("expected error")
	}
	requireContains(t, out, "Rejected")
	requireContains(t, out, "0 succeeded, 1 rejected, 0 failed")
}

func TestUploadCommandRequiresKeys(t *testing.T) {
	env := setupCLITestEnv(t, "")
	writeFile(t, env.configPath, "[imagekit]\nurl_endpoint = \"https://ik.example.com/e\"\n")

	_, _, err := runCLI(t, []string{"upload", "a.jpg"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing key error")
	}
	requireContains(t, err.Error(), "public_key")
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No uploads recorded")

	store, err := history.Open(context.Background(), env.historyDB)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.Record(context.Background(), history.Entry{
			LocalPath: fmt.Sprintf("/tmp/%d.jpg", i),
			FileName:  fmt.Sprintf("%d.jpg", i),
			Outcome:   "succeeded",
			URL:       fmt.Sprintf("https://ik.example.com/e/%d.jpg", i),
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	_ = store.Close()

	out, _, err = runCLI(t, []string{"history", "--limit", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "https://ik.example.com/e/2.jpg")
	if strings.Contains(out, "/tmp/0.jpg") || strings.Contains(out, "e/0.jpg") {
		t.Fatalf("limit not applied:\n%s", out)
	}
	requireContains(t, out, "Total: 3 succeeded, 0 rejected, 0 failed")

	out, _, err = runCLI(t, []string{"history", "prune", "--older-than", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	requireContains(t, out, "Removed 0 upload(s)")
}

func TestHistoryCommandDisabled(t *testing.T) {
	env := setupCLITestEnv(t, "")
	writeFile(t, env.configPath, "[history]\nenabled = false\n")

	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err == nil {
		t.Fatal("expected disabled error")
	}
	requireContains(t, err.Error(), "disabled")
}
