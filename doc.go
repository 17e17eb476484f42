// Package syncsim runs two classic concurrency-control problems as live,
// observable simulations:
//
//   - a multi-producer/multi-consumer bounded buffer where every slot is its
//     own critical section (mutex, condition variable, occupied flag);
//   - a multi-reader/multi-writer shared resource guarded by a
//     reader-writer lock, plus a second lock writers hold to announce write
//     intent so that readers defer to them.
//
// Actors run on their own goroutines, report every transition to an
// EventSink and stop cooperatively when a shared Latch opens.
package syncsim
