// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The reconnect timer in lib/connection and the relative timestamps in
// the notebook listing read time through a [Clock]. In production,
// Real() delegates to the time package. In tests, Fake() returns a
// clock that stands still until Advance is called, so a test can
// assert exactly when a reconnect attempt is scheduled and that
// teardown leaves nothing pending:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	manager := connection.New(connection.Options{Clock: fake, ...})
//	manager.Start(ctx)
//	fake.WaitForTimers(1)          // the first retry is scheduled
//	fake.Advance(2 * time.Second)  // fire it deterministically
//	manager.Stop()
//	if fake.PendingCount() != 0 { ... }
package clock
