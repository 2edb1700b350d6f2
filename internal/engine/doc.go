// Package engine owns authoritative playback time for a timeline.
//
// The Engine is a playback state machine (play/pause/seek/rate/loop)
// advanced in real time by a FrameScheduler. It is the single writer of its
// PlaybackState: external collaborators mutate it only through its methods,
// and observe it through registered listeners. Listener failures are
// isolated - a panicking subscriber is logged and the tick loop continues.
//
// Scheduling is cooperative: the scheduler invokes one tick per frame, the
// engine computes elapsed wall time since the previous frame (clamped to a
// maximum so a suspended host cannot produce a runaway jump) and advances
// currentTime by dt * playbackRate.
//
// INVARIANTS:
//   - 0 <= currentTime <= duration at all times
//   - playbackRate is finite and > 0
//   - no method panics or returns an error; invalid input is rejected
//     with the previous state retained (logged at debug level)
//   - Dispose is idempotent and stops all ticking and listener delivery
package engine
