package scaffold

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/stub"
)

var fixedNow = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)

func newTestGenerator(opts ...stub.Option) *Generator {
	return New(stub.NewEngine(opts...), WithClock(func() time.Time { return fixedNow }))
}

func TestGenerateBuildsSkeleton(t *testing.T) {
	root := t.TempDir()
	gen := newTestGenerator(stub.WithStrict(true))

	dest, err := gen.Generate(context.Background(), Plan{Name: "Blog", Root: root, Template: stub.DefaultSet})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if dest != filepath.Join(root, "Blog") {
		t.Fatalf("unexpected destination %s", dest)
	}

	for _, dir := range Directories {
		if info, err := os.Stat(filepath.Join(dest, dir)); err != nil || !info.IsDir() {
			t.Fatalf("missing directory %s: %v", dir, err)
		}
	}
	for _, file := range Files("Blog") {
		if _, err := os.Stat(filepath.Join(dest, file.Path)); err != nil {
			t.Fatalf("missing file %s: %v", file.Path, err)
		}
	}
	for _, keep := range KeepFiles {
		if _, err := os.Stat(filepath.Join(dest, keep)); err != nil {
			t.Fatalf("missing keep file %s: %v", keep, err)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("staging directory should be gone, root has %d entries", len(entries))
	}
}

func TestGeneratedManifestDeclaresProvider(t *testing.T) {
	root := t.TempDir()
	dest, err := newTestGenerator().Generate(context.Background(), Plan{Name: "blog-post", Root: root})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "composer.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest struct {
		Extra struct {
			Laravel struct {
				Providers []string `json:"providers"`
			} `json:"laravel"`
		} `json:"extra"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid json: %v\n%s", err, data)
	}
	if len(manifest.Extra.Laravel.Providers) != 1 || manifest.Extra.Laravel.Providers[0] != stub.DefaultProvider("blog-post") {
		t.Fatalf("unexpected providers %v", manifest.Extra.Laravel.Providers)
	}

	provider, err := os.ReadFile(filepath.Join(dest, "app", "Providers", "BlogPostServiceProvider.php"))
	if err != nil {
		t.Fatalf("read provider: %v", err)
	}
	if !strings.Contains(string(provider), "class BlogPostServiceProvider extends ServiceProvider") {
		t.Fatalf("unexpected provider:\n%s", provider)
	}
}

func TestGenerateAPITemplateSkipsModel(t *testing.T) {
	root := t.TempDir()
	dest, err := newTestGenerator().Generate(context.Background(), Plan{Name: "Shop", Root: root, Template: "api"})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "app", "Models", "Shop.php")); !os.IsNotExist(err) {
		t.Fatalf("api template should not generate a model, stat err=%v", err)
	}
	routes, err := os.ReadFile(filepath.Join(dest, "routes", "api.php"))
	if err != nil {
		t.Fatalf("read routes: %v", err)
	}
	if !strings.Contains(string(routes), "Route::prefix('shop')") {
		t.Fatalf("route prefix should use the lower-case name:\n%s", routes)
	}
}

func TestGenerateFailureLeavesNothingBehind(t *testing.T) {
	root := t.TempDir()
	gen := newTestGenerator(
		stub.WithFS("broken", fstest.MapFS{"config.stub": {Data: []byte("{{NOT_A_PLACEHOLDER}}")}}),
		stub.WithStrict(true),
	)

	_, err := gen.Generate(context.Background(), Plan{Name: "Blog", Root: root})
	if !errors.Is(err, moderr.ErrModuleCreationFailed) {
		t.Fatalf("expected ModuleCreationFailed, got %v", err)
	}
	if !errors.Is(err, moderr.ErrUnresolvedPlaceholder) {
		t.Fatalf("cause should be preserved, got %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed generation should leave the root empty, found %d entries", len(entries))
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator().Generate(ctx, Plan{Name: "Blog", Root: root})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if entries, _ := os.ReadDir(root); len(entries) != 0 {
		t.Fatalf("cancelled generation should clean up")
	}
}

func TestGenerateRefusesExistingDestination(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Blog", "keep"), 0o755); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := newTestGenerator().Generate(context.Background(), Plan{Name: "Blog", Root: root})
	if !errors.Is(err, moderr.ErrModuleCreationFailed) {
		t.Fatalf("expected ModuleCreationFailed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Blog", "keep")); err != nil {
		t.Fatalf("existing module must be untouched: %v", err)
	}
}
