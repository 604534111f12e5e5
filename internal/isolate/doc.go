// Package isolate executes probe attempts in isolated execution contexts so
// that a probe which crashes hard (illegal device memory access, out-of-memory
// abort, os.Exit deep inside a training loop) surfaces as an ordinary failure
// in the orchestrating process instead of killing it.
//
// Main Types:
//   - Runner: one probe attempt against a configuration snapshot
//   - ProcessRunner: re-executes the current binary's worker command in a
//     fresh process per attempt, so no accelerator state is inherited
//   - CommandRunner: probes an external trainer command instead of a
//     registered entry point
//   - FuncRunner: in-process execution with panic recovery, for tests and
//     jobs known not to crash
//
// Usage:
//
//	func main() {
//	    isolate.Register("trainer", setupTrainerAndTrain)
//	    // ... dispatch the hidden worker command to isolate.RunWorker,
//	    // then drive tuning with a ProcessRunner.
//	}
//
// The parent and worker speak a narrow protocol: the trial configuration goes
// in on stdin as a proto-marshaled structpb.Struct, and the tagged outcome
// comes back on stdout the same way. Stdout carries nothing else; worker logs
// and trainer output go to stderr. A worker that dies without writing an
// outcome is reported as a failure with the process exit state as the cause.
package isolate
