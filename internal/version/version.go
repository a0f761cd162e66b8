package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the bramble CLI.
// These variables can be overridden at build time via -ldflags.
var (
	Version    = "0.1.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

var segmentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders Version with each numeric segment in its own color.
// The pre-release suffix stays plain.
func Colored() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	for i, p := range parts {
		if i < len(segmentColors) {
			parts[i] = segmentColors[i].Sprint(p)
		}
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// Describe is the full --version text.
func Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bramble %s", Colored())
	if GitCommit != "" {
		fmt.Fprintf(&b, " (%s)", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, " built %s", BuildDate)
	}
	if GitMessage != "" {
		fmt.Fprintf(&b, "\n  %s", GitMessage)
	}
	return b.String()
}
