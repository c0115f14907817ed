package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name    string
		commit  string
		date    string
		contain string
	}{
		{name: "dev build", commit: "unknown", date: "unknown", contain: "distil version dev ("},
		{name: "release", commit: "0123456789abcdef", date: "2026-01-02T03:04:05Z", contain: "commit: 01234567"},
		{name: "short commit", commit: "abc", date: "2026-01-02T03:04:05Z", contain: "commit: abc,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldCommit, oldDate := Commit, Date
			Commit, Date = tt.commit, tt.date
			defer func() { Commit, Date = oldCommit, oldDate }()

			if got := String(); !strings.Contains(got, tt.contain) {
				t.Errorf("String() = %q, want it to contain %q", got, tt.contain)
			}
		})
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	if info.Version != Version || info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("GetInfo() = %+v", info)
	}
}
