package schedule

// Package schedule runs the weekly poll cadence: open the availability poll
// at one weekday and time, close it and run the optimizer at another. It
// computes concrete fire times from weekday anchors and drives a job loop
// until the context is cancelled.
