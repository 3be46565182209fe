// Package version resolves the version string stamped into every manifest
// of a packaging run from the release channel and the editor's own version.
package version

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Channel selects the versioning strategy of a run.
type Channel string

// Recognized release channels.
const (
	Stable Channel = "stable"
	Next   Channel = "next"
)

// Channels lists the recognized channels in help-text order.
var Channels = []Channel{Stable, Next}

// ParseChannel validates a channel selector. Anything other than the
// recognized values, including the empty string, is an error.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case Stable, Next:
		return c, nil
	case "":
		return "", fmt.Errorf("release channel is required: choose %q or %q", Stable, Next)
	default:
		return "", fmt.Errorf("unknown release channel %q: choose %q or %q", s, Stable, Next)
	}
}

// Preview reports whether manifests of this channel are flagged as previews.
func (c Channel) Preview() bool {
	return c == Next
}

// RevisionFunc returns the short source-control revision of the editor checkout.
type RevisionFunc func(ctx context.Context) (string, error)

// Resolve returns the version for channel. Stable reuses reference verbatim;
// Next asks revision once and derives a pre-release from reference.
func Resolve(ctx context.Context, channel Channel, reference string, revision RevisionFunc) (string, error) {
	switch channel {
	case Stable:
		return reference, nil
	case Next:
		rev, err := revision(ctx)
		if err != nil {
			return "", fmt.Errorf("resolving source revision: %w", err)
		}
		return NextPrerelease(reference, rev)
	default:
		return "", fmt.Errorf("unknown release channel %q", channel)
	}
}

// NextPrerelease bumps the minor component of reference and appends the
// revision: "1.4.2" with "abc1234" becomes "1.5.0-next.abc1234".
func NextPrerelease(reference, revision string) (string, error) {
	revision = strings.TrimSpace(revision)
	if revision == "" {
		return "", fmt.Errorf("empty source revision")
	}
	v, err := parseSemver(reference)
	if err != nil {
		return "", fmt.Errorf("parsing reference version %q: %w", reference, err)
	}
	bumped := v.IncMinor()
	return fmt.Sprintf("%s-%s.%s", bumped.String(), Next, revision), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
