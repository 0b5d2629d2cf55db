// Package buffer provides the fixed-capacity sample ring shared between a
// sample producer and the window consumer.
//
// A [Ring] never blocks and never grows: when full, the oldest sample is
// overwritten by the newest. The consumer marks samples it has processed with
// [Ring.Consume]; only overwriting a sample that was never consumed is
// counted as a drop. All methods are safe for concurrent
// use; a single mutex guards the storage.
package buffer
