//go:build windows

package ilias

// EFD_CLOEXEC and EFD_NONBLOCK are Unix eventfd flags.
// On Windows these are unused (createWakeFd ignores flags) but must be
// defined so that executor.go's createWakeFd(0, EFD_CLOEXEC|EFD_NONBLOCK)
// compiles on all platforms.
const (
	EFD_CLOEXEC  = 0
	EFD_NONBLOCK = 0
)

// createWakeFd creates a dummy wake mechanism for Windows.
//
// Windows IOCP does not use eventfd or self-pipes for wake-up; the real
// mechanism is PostQueuedCompletionStatus against the IOCP handle itself
// (see FastPoller.Wakeup in poller_windows.go). Returns -1, -1 to signal no
// wake FDs are needed; the executor's wake-pipe registration is skipped
// when wakeFd is negative.
func createWakeFd(initval uint, flags int) (int, int, error) {
	return -1, -1, nil
}
