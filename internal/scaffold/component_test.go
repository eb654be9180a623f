package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modkit/modkit/internal/moderr"
)

func TestComponentStubSelection(t *testing.T) {
	cases := []struct {
		component Component
		want      string
	}{
		{Component{Kind: KindController}, "controller"},
		{Component{Kind: KindController, API: true}, "api-controller"},
		{Component{Kind: KindController, Resource: true}, "resource-controller"},
		{Component{Kind: KindController, API: true, Resource: true}, "api-resource-controller"},
		{Component{Kind: KindMigration}, "migration"},
		{Component{Kind: KindMigration, Create: "posts"}, "create-migration"},
		{Component{Kind: KindMigration, Table: "posts"}, "table-migration"},
		{Component{Kind: KindSeeder}, "seeder"},
	}
	for _, tc := range cases {
		if got := tc.component.Stub(); got != tc.want {
			t.Fatalf("stub for %+v = %s, want %s", tc.component, got, tc.want)
		}
	}
}

func TestMakeComponentController(t *testing.T) {
	module := newModule(t)
	gen := newTestGenerator()

	path, err := gen.MakeComponent(Component{Kind: KindController, Module: "Blog", ModulePath: module, Name: "PostController", API: true})
	if err != nil {
		t.Fatalf("make controller: %v", err)
	}
	if path != filepath.Join(module, "app", "Http", "Controllers", "Api", "PostController.php") {
		t.Fatalf("unexpected path %s", path)
	}
	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "class PostController extends Controller") ||
		!strings.Contains(string(content), `namespace Modules\Blog\Http\Controllers\Api;`) {
		t.Fatalf("unexpected controller:\n%s", content)
	}

	_, err = gen.MakeComponent(Component{Kind: KindController, Module: "Blog", ModulePath: module, Name: "PostController", API: true})
	if !errors.Is(err, moderr.ErrAlreadyExists) {
		t.Fatalf("second generation should fail with AlreadyExists, got %v", err)
	}
}

func TestMakeComponentMigrationTimestamp(t *testing.T) {
	module := newModule(t)
	path, err := newTestGenerator().MakeComponent(Component{
		Kind: KindMigration, Module: "Blog", ModulePath: module, Name: "create_posts_table", Create: "posts",
	})
	if err != nil {
		t.Fatalf("make migration: %v", err)
	}
	if filepath.Base(path) != "2024_06_01_093000_create_posts_table.php" {
		t.Fatalf("unexpected migration file %s", filepath.Base(path))
	}
	content, _ := os.ReadFile(path)
	if !strings.Contains(string(content), "Schema::create('posts'") {
		t.Fatalf("unexpected migration:\n%s", content)
	}
}

func TestMakeComponentTestKinds(t *testing.T) {
	module := newModule(t)
	gen := newTestGenerator()
	path, err := gen.MakeComponent(Component{Kind: KindTest, Module: "Blog", ModulePath: module, Name: "PostTest", Unit: true})
	if err != nil {
		t.Fatalf("make test: %v", err)
	}
	content, _ := os.ReadFile(path)
	if !strings.Contains(path, filepath.Join("tests", "Unit")) || !strings.Contains(string(content), `Tests\Unit;`) {
		t.Fatalf("unit test generated in the wrong place: %s\n%s", path, content)
	}
}

func TestMakeComponentValidation(t *testing.T) {
	gen := newTestGenerator()
	if _, err := gen.MakeComponent(Component{Kind: KindModel, Module: "Ghost", ModulePath: filepath.Join(t.TempDir(), "Ghost"), Name: "Post"}); !errors.Is(err, moderr.ErrNotFound) {
		t.Fatalf("missing module should be NotFound, got %v", err)
	}
	module := newModule(t)
	if _, err := gen.MakeComponent(Component{Kind: KindModel, Module: "Blog", ModulePath: module, Name: "../Post"}); !errors.Is(err, moderr.ErrInvalidModuleName) {
		t.Fatalf("path-like names should be rejected, got %v", err)
	}
	if _, err := gen.MakeComponent(Component{Kind: "widget", Module: "Blog", ModulePath: module, Name: "Post"}); err == nil {
		t.Fatalf("unknown kind should be rejected")
	}
}

func TestMigrationNameForModel(t *testing.T) {
	cases := map[string]string{
		"Post":     "create_posts_table",
		"Category": "create_categories_table",
		"BlogPost": "create_blog_posts_table",
		"Box":      "create_boxes_table",
		"Day":      "create_days_table",
	}
	for model, want := range cases {
		if got := MigrationNameForModel(model); got != want {
			t.Fatalf("MigrationNameForModel(%s) = %s, want %s", model, got, want)
		}
	}
}

// newModule 生成一个完整模块，返回其目录。
func newModule(t *testing.T) string {
	t.Helper()
	dest, err := newTestGenerator().Generate(context.Background(), Plan{Name: "Blog", Root: t.TempDir()})
	if err != nil {
		t.Fatalf("generate module: %v", err)
	}
	return dest
}
