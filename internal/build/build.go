// Package build holds build-time information.
package build

var (
	// Version is the application version.
	// It defaults to "dev" and can be overwritten by linker flags.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the build date.
	Date = "unknown"

	// Target is the compile target sent to the transform service.
	// It is fixed when the loader is built and can be overridden by configuration.
	Target = "es2022"
)
