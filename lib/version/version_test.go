// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	saved := []string{Version, GitCommit, GitDirty, BuildTime}
	t.Cleanup(func() {
		Version, GitCommit, GitDirty, BuildTime = saved[0], saved[1], saved[2], saved[3]
	})

	Version, GitCommit, GitDirty, BuildTime = "1.2.0", "abc1234", "true", "2026-03-01T00:00:00Z"
	if got := Info(); got != "1.2.0 (abc1234-dirty, 2026-03-01T00:00:00Z)" {
		t.Fatalf("Info() = %q", got)
	}
	GitDirty = "false"
	if got := Info(); strings.Contains(got, "dirty") {
		t.Fatalf("clean build reported dirty: %q", got)
	}
	if full := Full(); !strings.HasPrefix(full, Info()+"\n  Go: ") {
		t.Fatalf("Full() = %q", full)
	}
}
