//go:build !linux

package fslock

// fileLock 在非 Linux 平台为空实现，调用方仅依赖进程内互斥。
type fileLock struct{}

func acquireFileLock(string) (*fileLock, error) {
	return nil, errFlockUnavailable
}

func (l *fileLock) release() {}
