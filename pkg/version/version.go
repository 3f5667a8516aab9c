// Package version holds the relay software's identity strings; V is reported
// as the version field of the NIP-11 relay information document.
package version

// V is the relay's version string, overridden at build time via
// -ldflags "-X nostrd.dev/pkg/version.V=...".
var V = "v0.1.0"

// Description is the relay's one-line self-description.
const Description = "a nostrd relay"

// URL is the relay software's canonical source location.
const URL = "https://nostrd.dev"
