package sandbox

import (
	"fmt"
	"time"
)

// SourceName is the filename guest code is reported under in error text.
const SourceName = "<user_code>"

// Fixed messages for the supervisor's terminal outcomes.
const (
	timeoutMessage  = "Execution timed out"
	noResultMessage = "No result produced"
)

// Config bounds one run. Values are fixed at startup.
type Config struct {
	MaxSteps      int           // step ceiling per trace
	Timeout       time.Duration // wall-clock budget per run
	MaxConcurrent int           // simultaneous worker processes
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxSteps:      2000,
		Timeout:       3 * time.Second,
		MaxConcurrent: 8,
	}
}

func stepLimitMessage(n int) string {
	return fmt.Sprintf("Visualization limited to %d steps", n)
}
