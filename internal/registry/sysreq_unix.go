//go:build linux || darwin

package registry

import (
	"golang.org/x/sys/unix"
)

// checkWritable 使用 access(W_OK) 判断当前进程能否在目录中创建条目。
func checkWritable(dir string) error {
	return unix.Access(dir, unix.W_OK)
}

// freeSpace 返回目录所在文件系统对非特权用户可用的字节数。
func freeSpace(dir string) (uint64, bool, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, false, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), true, nil
}
