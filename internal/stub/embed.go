package stub

import (
	"embed"
	"io/fs"
)

//go:embed stubs
var embedded embed.FS

// Defaults 返回内置的默认 stub 文件系统，根目录即 stubs/。
func Defaults() fs.FS {
	sub, err := fs.Sub(embedded, "stubs")
	if err != nil {
		panic(err)
	}
	return sub
}
