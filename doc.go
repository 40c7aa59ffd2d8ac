// Package logbook turns a program run into a self-documenting log file.
//
// [Start] opens the primary log file, writes a descriptive header (run
// metadata, git state, command line, runtime version, build dependencies,
// caller-supplied variables), and configures a logging channel with file
// and console sinks. Discrete units of work, typically external tool
// invocations, get their own isolated files through [SubLog], with
// breadcrumb lines in the parent log pointing at them.
//
// The zero values of [Config] and [SubLogConfig] select the full default
// behavior: every header section, file plus console output, timestamped
// filenames. Fields switch individual pieces off.
//
//	session, err := logbook.Start(logbook.Config{
//		OutputDir: dir,
//		App:       logbook.App{Name: "mytool", Version: version},
//		Verbose:   true,
//	})
//	if err != nil {
//		return err
//	}
//	session.Channel().Info("starting analysis")
//
//	err = logbook.WithSubLog(logbook.SubLogConfig{
//		Name:      "preprocessing",
//		OutputDir: dir,
//	}, func(sl *logbook.SubLog) error {
//		sl.Info("resampling input")
//		_, err := sl.RunCommand(exec.Command("resampler", "--fast"))
//		return err
//	})
package logbook
