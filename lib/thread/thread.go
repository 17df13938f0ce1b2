/*package thread resolves the number of worker goroutines a run uses.*/
package thread

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrTooManyThreads is returned when more threads are requested than there
// are cores.
var ErrTooManyThreads = errors.New("more threads requested than available cores")

// Workers converts a requested thread count into the number of workers.
// Non-positive values request one worker per core.
func Workers(n int) (int, error) {
	cores := runtime.NumCPU()
	if n <= 0 { return cores, nil }
	if n > cores {
		return 0, fmt.Errorf("%w: %d threads requested, but your system only has %d cores. If you want hepstat to use every core, set threads = -1.", ErrTooManyThreads, n, cores)
	}
	return n, nil
}

// Set resolves n with Workers and sets GOMAXPROCS to the result.
func Set(n int) (int, error) {
	workers, err := Workers(n)
	if err != nil { return 0, err }
	runtime.GOMAXPROCS(workers)
	return workers, nil
}
