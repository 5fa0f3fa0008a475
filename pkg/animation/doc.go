// Package animation provides the frame-driven timing primitives behind the
// page's count-up statistics.
//
// # Core Components
//
//   - [FrameScheduler]: Owns a set of [Ticker]s and advances them once per
//     frame, either from the host's loop via Step or from Run.
//
//   - [Counter]: Interpolates a display value from 0 to an end value over a
//     duration while its trigger is true, and resets to 0 when it is not.
//
//   - Curves: Easing functions such as [EaseOutQuart] that turn linear
//     progress into decelerating motion.
//
// # Basic Usage
//
// Feed a counter from a visibility signal and redraw on changes:
//
//	scheduler := animation.NewFrameScheduler(nil)
//	counter, err := animation.NewCounter(scheduler, 98, 1500*time.Millisecond)
//	if err != nil {
//	    return err
//	}
//	defer counter.Dispose()
//	counter.AddListener(func(v int64) { redraw(v) })
//	tracker.AddListener(counter.SetTrigger)
//
//	// Once per frame
//	scheduler.Step()
package animation
