package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoctorCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	env := setupCLITestEnv(t, srv.URL+"/upload")
	// Point delivery at the test server too so no external request is made.
	writeFile(t, env.configPath, `
[imagekit]
url_endpoint = "`+srv.URL+`/e"
public_key = "pub"
private_key = "priv"

[upload]
endpoint = "`+srv.URL+`/upload"

[history]
path = "`+env.historyDB+`"
`)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Upload endpoint:")
	requireContains(t, out, "[OK] reachable (404)")
	if strings.Contains(out, "[FAIL]") {
		t.Fatalf("unexpected failure:\n%s", out)
	}
}

func TestDoctorCommandReportsMissingKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	env := setupCLITestEnv(t, "")
	writeFile(t, env.configPath, "[upload]\nendpoint = \""+srv.URL+"\"\n[history]\nenabled = false\n")

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected failing checks")
	}
	requireContains(t, out, "Upload keys:")
	requireContains(t, out, "[FAIL]")
}
