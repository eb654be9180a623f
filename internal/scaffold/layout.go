package scaffold

import (
	"path/filepath"

	"github.com/modkit/modkit/internal/stub"
)

// Directories 是新模块的目录骨架（相对模块根目录）。
var Directories = []string{
	"app/Http/Controllers",
	"app/Http/Controllers/Api",
	"app/Http/Requests",
	"app/Http/Resources",
	"app/Models",
	"app/Providers",
	"config",
	"database/migrations",
	"database/seeders",
	"database/factories",
	"routes",
	"resources/views",
	"resources/lang/en",
}

// KeepFiles 是需要占位 .gitkeep 的空目录。
var KeepFiles = []string{
	"resources/views/.gitkeep",
	"resources/lang/en/.gitkeep",
}

// File 描述一个由 stub 渲染出的文件。
type File struct {
	Stub  string
	Path  string
	Class string
}

// Files 返回模块 name 的固定文件清单，路径相对模块根目录。
func Files(name string) []File {
	studly := stub.Studly(name)
	return []File{
		{Stub: "composer", Path: "composer.json"},
		{Stub: "service-provider", Path: filepath.Join("app", "Providers", stub.ProviderClass(name)+".php"), Class: stub.ProviderClass(name)},
		{Stub: "controller", Path: filepath.Join("app", "Http", "Controllers", studly+"Controller.php"), Class: studly + "Controller"},
		{Stub: "api-controller", Path: filepath.Join("app", "Http", "Controllers", "Api", studly+"Controller.php"), Class: studly + "Controller"},
		{Stub: "model", Path: filepath.Join("app", "Models", studly+".php"), Class: studly},
		{Stub: "request", Path: filepath.Join("app", "Http", "Requests", studly+"Request.php"), Class: studly + "Request"},
		{Stub: "resource", Path: filepath.Join("app", "Http", "Resources", studly+"Resource.php"), Class: studly + "Resource"},
		{Stub: "web-routes", Path: filepath.Join("routes", "web.php")},
		{Stub: "api-routes", Path: filepath.Join("routes", "api.php")},
		{Stub: "config", Path: filepath.Join("config", "config.php")},
	}
}
