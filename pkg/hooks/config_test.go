package hooks

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeHooksFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write hooks.yaml: %v", err)
	}
}

func TestExportContextToEnv(t *testing.T) {
	ctx := ExportContext{
		Paths:     []string{"/tmp/map.svg", "/tmp/map.md"},
		Formats:   []string{"svg", "md"},
		Source:    "/tmp/map.mm",
		Query:     "build",
		NodeCount: 42,
		Timestamp: time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC),
	}

	env := ctx.ToEnv()
	want := []string{
		"MV_EXPORT_PATHS=/tmp/map.svg" + string(os.PathListSeparator) + "/tmp/map.md",
		"MV_EXPORT_FORMATS=svg,md",
		"MV_SOURCE=/tmp/map.mm",
		"MV_QUERY=build",
		"MV_NODE_COUNT=42",
		"MV_TIMESTAMP=2025-11-30T10:30:00Z",
	}
	for _, w := range want {
		if !slices.Contains(env, w) {
			t.Errorf("env missing %q: %v", w, env)
		}
	}
}

func TestLoaderNoConfig(t *testing.T) {
	loader := NewLoader(WithDir(t.TempDir()))
	if err := loader.Load(); err != nil {
		t.Fatalf("expected no error for missing config, got: %v", err)
	}
	if loader.HasHooks() {
		t.Error("expected no hooks when config is missing")
	}
}

func TestLoaderDefaultsToConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	loader := NewLoader()
	want := filepath.Join(dir, "mindview", FileName)
	if loader.Path() != want {
		t.Errorf("Path() = %q, want %q", loader.Path(), want)
	}
}

func TestLoaderWithValidConfig(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, `
hooks:
  pre-export:
    - name: validate
      command: echo "validating"
      timeout: 5s
  post-export:
    - name: notify
      command: echo "done"
      timeout: 2
      env:
        TARGET: out
    - command: echo anonymous
`)

	loader := NewLoader(WithDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loader.HasHooks() {
		t.Fatal("expected hooks")
	}

	pre := loader.GetHooks(PreExport)
	if len(pre) != 1 {
		t.Fatalf("expected 1 pre-export hook, got %d", len(pre))
	}
	if pre[0].Timeout != 5*time.Second {
		t.Errorf("pre timeout = %v, want 5s", pre[0].Timeout)
	}
	if pre[0].OnError != OnErrorFail {
		t.Errorf("pre on_error = %q, want fail", pre[0].OnError)
	}

	post := loader.GetHooks(PostExport)
	if len(post) != 2 {
		t.Fatalf("expected 2 post-export hooks, got %d", len(post))
	}
	if post[0].Timeout != 2*time.Second {
		t.Errorf("numeric timeout = %v, want 2s", post[0].Timeout)
	}
	if post[0].OnError != OnErrorContinue {
		t.Errorf("post on_error = %q, want continue", post[0].OnError)
	}
	if post[0].Env["TARGET"] != "out" {
		t.Errorf("env not decoded: %v", post[0].Env)
	}
	if post[1].Name != "post-export-2" {
		t.Errorf("default name = %q", post[1].Name)
	}
	if post[1].Timeout != DefaultTimeout {
		t.Errorf("default timeout = %v", post[1].Timeout)
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, "hooks:\n  pre-export:\n    - name: [invalid yaml\n")

	if err := NewLoader(WithDir(dir)).Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoaderSkipsEmptyCommands(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, `
hooks:
  pre-export:
    - name: empty
      command: ""
  post-export:
    - command: "   "
`)

	loader := NewLoader(WithDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loader.HasHooks() {
		t.Error("hooks with empty commands should be skipped")
	}
	if len(loader.Warnings()) != 2 {
		t.Errorf("expected 2 warnings, got %v", loader.Warnings())
	}
}

func TestLoaderUnknownOnError(t *testing.T) {
	dir := t.TempDir()
	writeHooksFile(t, dir, "hooks:\n  post-export:\n    - name: odd\n      command: \"true\"\n      on_error: ignore\n")

	loader := NewLoader(WithDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loader.GetHooks(PostExport)[0].OnError; got != OnErrorFail {
		t.Errorf("on_error = %q, want fail", got)
	}
	if len(loader.Warnings()) != 1 {
		t.Errorf("expected a warning, got %v", loader.Warnings())
	}
}

func TestHookUnmarshalYAMLInvalidTimeout(t *testing.T) {
	var h Hook
	if err := yaml.Unmarshal([]byte("name: bad\ntimeout: nope\ncommand: echo hi\n"), &h); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoaderGetHooksUnknownPhase(t *testing.T) {
	loader := &Loader{config: &Config{Hooks: HooksByPhase{
		PreExport: []Hook{{Name: "test", Command: "echo ok"}},
	}}}
	if hooks := loader.GetHooks(HookPhase("unknown")); hooks != nil {
		t.Fatalf("expected nil for unknown phase, got %#v", hooks)
	}
	if (&Loader{}).HasHooks() {
		t.Error("unloaded loader should have no hooks")
	}
}
