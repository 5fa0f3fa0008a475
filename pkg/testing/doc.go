// Package testing provides test doubles for nodeward's timing and
// visibility primitives.
//
// # Animation Testing
//
// Control time for deterministic counter tests:
//
//	clock := nwtest.NewFakeClock()
//	scheduler := animation.NewFrameScheduler(clock)
//	counter, _ := animation.NewCounter(scheduler, 98, 1500*time.Millisecond)
//	counter.SetTrigger(true)
//	clock.Advance(750 * time.Millisecond)
//	scheduler.Step()
//
// # Visibility Testing
//
// Script geometry changes instead of scrolling a real viewport:
//
//	env := nwtest.NewFakeEnvironment()
//	tracker, _ := visibility.Observe(env, "stats", visibility.DefaultOptions())
//	env.PushRatio("stats", 0.2)
//
// # Snapshot Testing
//
// Compare JSON-serializable state against inline or golden expectations:
//
//	nwtest.MatchesJSON(t, page.Snapshot(), `{"scroll": 0}`)
//
// Update golden files with:
//
//	NODEWARD_UPDATE_SNAPSHOTS=1 go test ./...
package testing
