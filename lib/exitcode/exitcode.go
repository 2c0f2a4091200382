// Package exitcode exports choreoserve's exit status numbers.
package exitcode

const (
	// Success is returned when the server shut down without error.
	Success = iota
	// UsageError is returned when there was a syntax or usage error in the arguments.
	UsageError
	// UncategorizedError is returned for any error not categorised otherwise.
	UncategorizedError
	// DirNotFound is returned when the directory to serve is not found or isn't a directory.
	DirNotFound
	// BindError is returned when the server couldn't listen on its address, eg the port is in use.
	BindError
)
