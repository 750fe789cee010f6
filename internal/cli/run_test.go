package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"recommend/internal/domain"
)

func writeTestConfig(t *testing.T, dir string, embedURL, controllerURL, rerankURL string) {
	t.Helper()
	content := fmt.Sprintf(`embedding:
  base_url: %s
  dimension: 4
index:
  controller_url: %s
rerank:
  base_url: %s
http:
  timeout_sec: 5
`, embedURL, controllerURL, rerankURL)
	if err := os.WriteFile(filepath.Join(dir, "recommend.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// executeCommand runs args through the root command after resetting the
// flags of cmd and the global config path.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	cfgFile = ""
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func executeRun(t *testing.T, args ...string) error {
	t.Helper()
	return executeCommand(t, runCmd, append([]string{"run", "--quiet"}, args...)...)
}

func TestRunCommandWritesResults(t *testing.T) {
	for k, v := range fullEnv {
		t.Setenv(k, v)
	}
	f := newFakeServices(t, 50)
	dir := t.TempDir()
	writeTestConfig(t, dir, f.URL, f.URL, f.URL)
	out := filepath.Join(dir, "recommendations.json")

	if err := executeRun(t, "-d", dir, "-o", out, "-q", "best waterproof camera", "-n", "10"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("results file not written: %v", err)
	}
	var saved []domain.FormattedResult
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if len(saved) != 10 {
		t.Errorf("expected 10 records, got %d", len(saved))
	}
}

func TestRunCommandNoFileOnFailure(t *testing.T) {
	for k, v := range fullEnv {
		t.Setenv(k, v)
	}
	f := newFakeServices(t, 50)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, f.URL, f.URL, broken.URL)
	out := filepath.Join(dir, "recommendations.json")

	err := executeRun(t, "-d", dir, "-o", out)
	if !errors.Is(err, domain.ErrRerank) {
		t.Fatalf("expected ErrRerank, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("results file must not exist after a failed run, stat: %v", err)
	}
}

func TestRunCommandMissingEnv(t *testing.T) {
	for k := range fullEnv {
		t.Setenv(k, "")
	}
	f := newFakeServices(t, 50)
	dir := t.TempDir()
	writeTestConfig(t, dir, f.URL, f.URL, f.URL)

	err := executeRun(t, "-d", dir, "-o", filepath.Join(dir, "out.json"))
	if !errors.Is(err, domain.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	if f.calls != 0 {
		t.Errorf("expected no network calls, got %d", f.calls)
	}
}

func TestRunCommandMetricsIncludeSave(t *testing.T) {
	for k, v := range fullEnv {
		t.Setenv(k, v)
	}
	f := newFakeServices(t, 50)
	dir := t.TempDir()
	writeTestConfig(t, dir, f.URL, f.URL, f.URL)
	prom := filepath.Join(dir, "recommend.prom")
	appendConfig(t, dir, fmt.Sprintf("metrics:\n  textfile: %s\n", prom))

	if err := executeRun(t, "-d", dir, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	for _, stage := range []string{"embed", "retrieve", "rerank", "format", "save"} {
		if !strings.Contains(string(data), fmt.Sprintf(`stage="%s"`, stage)) {
			t.Errorf("metrics missing stage %q:\n%s", stage, data)
		}
	}
}

func TestRunCommandMetricsWrittenOnFailure(t *testing.T) {
	for k, v := range fullEnv {
		t.Setenv(k, v)
	}
	f := newFakeServices(t, 50)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, f.URL, f.URL, broken.URL)
	prom := filepath.Join(dir, "recommend.prom")
	appendConfig(t, dir, fmt.Sprintf("metrics:\n  textfile: %s\n", prom))

	if err := executeRun(t, "-d", dir, "-o", filepath.Join(dir, "out.json")); !errors.Is(err, domain.ErrRerank) {
		t.Fatalf("expected ErrRerank, got %v", err)
	}

	data, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(data), `recommend_stage_errors_total{stage="rerank"} 1`) {
		t.Errorf("expected a rerank error count:\n%s", data)
	}
}

func TestRunCommandHistoryUnderDir(t *testing.T) {
	for k, v := range fullEnv {
		t.Setenv(k, v)
	}
	f := newFakeServices(t, 50)
	dir := t.TempDir()
	writeTestConfig(t, dir, f.URL, f.URL, f.URL)
	appendConfig(t, dir, "history:\n  enabled: true\n")

	if err := executeRun(t, "-d", dir, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".recommend", "history.db")); err != nil {
		t.Fatalf("history not stored under --dir: %v", err)
	}
	if err := executeCommand(t, historyListCmd, "history", "list", "-d", dir); err != nil {
		t.Errorf("history list failed: %v", err)
	}
}

func TestRunCommandMissingConfigFile(t *testing.T) {
	for k, v := range fullEnv {
		t.Setenv(k, v)
	}
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.yaml")

	err := executeRun(t, "-d", dir, "--config", missing, "-o", filepath.Join(dir, "out.json"))
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected an error naming %s, got %v", missing, err)
	}
}

func appendConfig(t *testing.T, dir, extra string) {
	t.Helper()
	fh, err := os.OpenFile(filepath.Join(dir, "recommend.yaml"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	if _, err := fh.WriteString(extra); err != nil {
		t.Fatal(err)
	}
}
