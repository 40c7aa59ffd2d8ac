// Package channel implements named logging channels with attachable sinks.
//
// A [Registry] maps dotted channel names to [Channel] values. Channels form
// a hierarchy through their names: records emitted on "pipeline.step" also
// reach the sinks of "pipeline" and of the root channel, unless propagation
// is switched off along the way. Sinks are [log/slog] handlers that own
// their output resource and know how to release it.
//
// The registry is an explicit value rather than ambient process state so
// that callers (and tests) can inject their own. [Default] returns the
// shared registry used when none is supplied.
//
// # Basic Usage
//
//	reg := channel.NewRegistry()
//	ch := reg.Get("pipeline")
//	sink, err := channel.NewFileSink("/tmp/pipeline.log", slog.LevelDebug)
//	if err != nil {
//		return err
//	}
//	ch.AttachSink(sink)
//	ch.Info("pipeline started")
//
// # Testing
//
// [ForTest] returns a fresh registry whose root channel writes through the
// test's log output:
//
//	func TestSomething(t *testing.T) {
//		reg := channel.ForTest(t)
//		reg.Get("x").Info("visible on failure or with -v")
//	}
package channel
