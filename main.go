// Command c8 executes CHIP-8 programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/dmnk/c8/chip8"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

type options struct {
	gui      bool
	debugger bool
	trace    bool
	hz       int
	rom      string
}

func main() {
	var (
		cliFlag     = flag.Bool("cli", false, "disable GUI features (render to the terminal)")
		devFlag     = flag.Bool("dev", false, "enable developer mode (watch and reload the program)")
		debugFlag   = flag.Bool("debug", false, "enable debugger (implies -dev)")
		traceFlag   = flag.Bool("trace", false, "log every executed instruction")
		hzFlag      = flag.Int("hz", 0, "limit execution to `rate` instructions per second, 0 to run unthrottled")
		versionFlag = flag.Bool("version", false, "print version and exit")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli] [-hz rate] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-cli] <-dev | -debug> <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	if *versionFlag {
		fmt.Printf("c8 %s\n", buildinfo.Version(version, commit, date))
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
	}

	ctx := app.Context()
	logger := newLogger(*traceFlag)
	opts := options{
		gui:      !*cliFlag,
		debugger: *debugFlag,
		trace:    *traceFlag,
		hz:       *hzFlag,
		rom:      flag.Arg(0),
	}

	if *devFlag || *debugFlag {
		code, err := devMode(ctx, opts, logger)
		if err != nil {
			logger.Fatal(err.Error())
		}
		os.Exit(code)
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			logger.Fatal("creating CPU profile file", log.Err(err))
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	code, err := run(ctx, opts, logger)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		logger.Fatal(err.Error())
	}
	os.Exit(code)
}

func newLogger(debug bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

func run(ctx context.Context, opts options, logger *log.Logger) (int, error) {
	rom, err := readROM(opts.rom)
	if err != nil {
		return 0, err
	}

	r := NewRunner(opts.gui, false, nil)
	r.Hz = opts.hz
	r.Logf = func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	}
	if opts.trace {
		r.Trace = traceFunc(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		})
	}
	go func() {
		<-ctx.Done()
		r.Debug("exit", 0)
	}()

	code := r.Run(rom)
	if err := r.Err(); err != nil && err != chip8.ErrStopped {
		logFault(logger, err)
	}
	return code, nil
}

// logFault reports the error that ended execution, breaking out the
// fault fields so each halt kind gets a distinguishable log line.
func logFault(logger *log.Logger, err error) {
	var halt chip8.HaltError
	if errors.As(err, &halt) {
		logger.Error("machine halted",
			log.String("fault", halt.HaltCode.String()),
			log.Uint16("addr", halt.Addr),
			log.Uint16("word", halt.Word))
		return
	}
	logger.Error("machine halted", log.Err(err))
}

// traceFunc adapts a printf style sink to the machine's trace hook.
func traceFunc(logf func(format string, args ...any)) chip8.TraceFunc {
	return func(addr, word uint16, in chip8.Instruction) {
		logf("%.4x %.4x  %s", addr, word, in)
	}
}
