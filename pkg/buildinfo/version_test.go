package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
	Version, Commit, Date = "v1.0.0", "abc123", "2026-01-01"

	want := Info{Version: "v1.0.0", Commit: "abc123", Date: "2026-01-01"}
	if got := Get(); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if got := Template(); !strings.Contains(got, "version v1.0.0") || !strings.Contains(got, "commit: abc123") {
		t.Errorf("Template() = %q", got)
	}
}
