// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package clock abstracts the current time.

Topic phases are derived from timestamps on every access, so anything that
classifies a topic takes a Clock instead of calling time.Now directly:

	engine := voting.NewEngine(topics, clock.Real(), 10*time.Minute)

Tests freeze and move time explicitly:

	fake := clock.Fake(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	fake.Advance(time.Second)
*/
package clock
