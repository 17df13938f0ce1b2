/*package error contains simple functions for reporting fatal hepstat errors.
*/
package error

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
)

var (
	logger = slog.Default()
	// exit is replaced in tests.
	exit = os.Exit
)

// SetLogger sets the logger errors are reported to.
func SetLogger(log *slog.Logger) { logger = log }

// External reports an error and kills the program. It should be used when an
// error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as
// the standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	logger.Error("hepstat exited early with the following error:\n" +
		fmt.Sprintf(format, a...))
	exit(1)
}

// Internal reports an error along with a stack trace and kills the program.
// It should be used when the error requires a code dive to fix. It has the
// same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	logger.Error("hepstat exited early with the following internal error:\n" +
		fmt.Sprintf(format, a...), "stack", string(debug.Stack()))
	exit(1)
}
