// Package utils provides shared low-level helpers used throughout Señor
// Octopus's internals: generic pointer and string utilities, and a simple
// elapsed-time timer used to measure the pipeline's total run duration.
//
// Key entry points: [Ptr] for converting values to pointers, [ToString] and
// [JSONToString] for debug-friendly formatting, and [Timer] for measuring
// latency.
package utils
