// Package nagios implements the Nagios plugin result convention: a
// severity taxonomy bound to fixed process exit codes, and a single
// final status line in the form "<SEVERITY>: <message>".
package nagios

import "fmt"

// Status is one of the severities understood by a Nagios-compatible
// monitoring supervisor.
type Status string

const (
	StatusOK        Status = "OK"
	StatusWarning   Status = "WARNING"
	StatusCritical  Status = "CRITICAL"
	StatusUnknown   Status = "UNKNOWN"
	StatusDependent Status = "DEPENDENT"
)

// ExitCode returns the process exit code bound to the status.
// Unrecognized statuses map to the UNKNOWN code.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	case StatusUnknown:
		return 3
	case StatusDependent:
		return 4
	default:
		return 3
	}
}

// Outcome is the classified result of a single check invocation. Exactly
// one Outcome is produced per invocation and terminates the process.
type Outcome struct {
	Status  Status
	Message string
}

// String renders the final status line consumed by the supervisor.
func (o Outcome) String() string {
	return fmt.Sprintf("%s: %s", o.Status, o.Message)
}

// ExitCode returns the process exit code for the outcome.
func (o Outcome) ExitCode() int {
	return o.Status.ExitCode()
}

// OK reports a successful check.
func OK(message string) Outcome {
	return Outcome{Status: StatusOK, Message: message}
}

// Warning reports a degraded but non-critical condition.
func Warning(message string) Outcome {
	return Outcome{Status: StatusWarning, Message: message}
}

// Critical reports a failed check.
func Critical(message string) Outcome {
	return Outcome{Status: StatusCritical, Message: message}
}

// Unknown reports that the check itself could not determine the state,
// typically because the probe infrastructure is suspect.
func Unknown(message string) Outcome {
	return Outcome{Status: StatusUnknown, Message: message}
}

// Dependent reports that the check depends on something in an unknown
// state.
func Dependent(message string) Outcome {
	return Outcome{Status: StatusDependent, Message: message}
}

// Criticalf is Critical with printf formatting.
func Criticalf(format string, args ...any) Outcome {
	return Critical(fmt.Sprintf(format, args...))
}

// Unknownf is Unknown with printf formatting.
func Unknownf(format string, args ...any) Outcome {
	return Unknown(fmt.Sprintf(format, args...))
}
