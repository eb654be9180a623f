//go:build !linux && !darwin

package registry

import "os"

// checkWritable 通过创建并删除临时文件探测目录可写性。
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".modkit-writable-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// freeSpace 在不支持 statfs 的平台上无法判定，返回 ok=false 跳过检查。
func freeSpace(string) (uint64, bool, error) {
	return 0, false, nil
}
