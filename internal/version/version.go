package version

// Version is the current version of the call server.
// Release builds set it with:
//   go build -ldflags="-X 'github.com/no-panic/callserver/internal/version.Version=v1.0.0'"
var Version = "dev"
