package version

// Version is the release tag of this build, overridden at link time with
// -ldflags "-X github.com/bnema/packybar/internal/version.Version=...".
var Version = "1.0.0"
