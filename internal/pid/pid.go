// Package pid keeps a single process owning the stats state file.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/mcwatch/internal/errors"
)

const defaultDirPerm = 0o755

// Write records the current process ID at path. It fails with
// ErrAlreadyRunning when the file names another live process; a stale file
// is replaced.
func Write(path string) error {
	errFactory := errors.New()

	if other, err := Read(path); err == nil && other != os.Getpid() && isRunning(other) {
		return errFactory.WithData(errors.ErrAlreadyRunning, struct {
			PID  int
			Path string
		}{other, path})
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	return nil
}

// Read returns the process ID stored at path.
func Read(path string) (int, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrInternal, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrInternal, err)
	}

	return pid, nil
}

// Remove deletes the PID file if it still belongs to this process.
func Remove(path string) error {
	pid, err := Read(path)
	if err != nil || pid != os.Getpid() {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrShutdownFailed, err)
	}

	return nil
}

func isRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
