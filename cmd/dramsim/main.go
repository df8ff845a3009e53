// Command dramsim replays a memory-request trace through a cycle-accurate
// DRAM memory-system model and reports the issued command trace and
// aggregate statistics the run produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ossdram/dramsim"
	"github.com/ossdram/dramsim/internal/config"
	"github.com/ossdram/dramsim/internal/constants"
	"github.com/ossdram/dramsim/internal/dashboard"
	"github.com/ossdram/dramsim/internal/interactive"
	"github.com/ossdram/dramsim/internal/interfaces"
	"github.com/ossdram/dramsim/internal/logging"
	"github.com/ossdram/dramsim/internal/topology"
	"github.com/ossdram/dramsim/internal/trace"
)

const defaultCtrlFile = "ctrl/system.ctrl"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dramsim", flag.ContinueOnError)
	var (
		traceFile    = fs.String("t", "", "input trace file (required)")
		deviceFiles  = fs.String("d", "", "device spec file(s), comma-separated; one per channel, or one broadcast to all channels (required)")
		ctrlFile     = fs.String("c", defaultCtrlFile, "controller config file")
		outputPrefix = fs.String("o", "", "output prefix; writes <prefix>.trace and <prefix>.stats (stdout if empty)")
		verbose      = fs.Bool("v", false, "verbose logging")
		statsAddr    = fs.String("stats-addr", "", "bind address for a live process-stats dashboard")
		dumpTopology = fs.String("dump-topology", "", "write a Graphviz object-graph dump of the constructed memory system to FILE, before the run begins")
		interactiveF = fs.Bool("interactive", false, "watch stdin for a 'q' keypress to abort the run early")
		channelCap   = fs.Int64("s", constants.DefaultChannelCapacityBytes, "per-channel memory capacity in bytes, used to derive each device's rank count")
	)
	fs.StringVar(traceFile, "trace", "", "same as -t")
	fs.StringVar(deviceFiles, "device", "", "same as -d")
	fs.StringVar(ctrlFile, "ctrl", defaultCtrlFile, "same as -c")
	fs.StringVar(outputPrefix, "output", "", "same as -o")
	fs.BoolVar(verbose, "verbose", false, "same as -v")
	fs.Usage = func() { printUsage(fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	if *traceFile == "" || *deviceFiles == "" {
		fmt.Fprintln(os.Stderr, "dramsim: -t and -d are required")
		fs.Usage()
		return 2
	}

	ctrl, devs, err := loadConfig(*ctrlFile, *deviceFiles)
	if err != nil {
		logger.Error("config load failed", "error", err)
		return 1
	}

	tf, err := os.Open(*traceFile)
	if err != nil {
		logger.Error("trace open failed", "error", err)
		return 1
	}
	defer tf.Close()
	source := trace.NewSource(tf)

	tracer, closeTracer, err := openTracer(*outputPrefix)
	if err != nil {
		logger.Error("trace output open failed", "error", err)
		return 1
	}
	defer closeTracer()

	tracers := make([]interfaces.CommandTracer, ctrl.NumChan)
	for i := range tracers {
		tracers[i] = tracer
	}

	numRank := config.DeriveNumRank(ctrl, devs[0], *channelCap)
	ms, err := dramsim.New(ctrl, devs, numRank, tracers)
	if err != nil {
		logger.Error("memory system init failed", "error", err)
		return 1
	}

	if *dumpTopology != "" {
		if err := writeTopologyDump(*dumpTopology, ms); err != nil {
			logger.Error("topology dump failed", "error", err)
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var watcher *interactive.Watcher
	if *interactiveF {
		if interactive.IsTerminal(os.Stdin) {
			watcher = interactive.Watch(os.Stdin, cancel)
			defer watcher.CleanUp()
		} else {
			logger.Warn("--interactive ignored: stdin is not a terminal")
		}
	}

	var dash *dashboard.Server
	if *statsAddr != "" {
		dash = dashboard.Start(*statsAddr)
		defer dash.Stop()
	}

	summary, err := ms.Run(ctx, source)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	if err := writeStatsOutput(*outputPrefix, summary); err != nil {
		logger.Error("stats write failed", "error", err)
		return 1
	}

	return 0
}

func loadConfig(ctrlPath, deviceList string) (*config.ControllerConfig, []*config.DeviceConfig, error) {
	cf, err := os.Open(ctrlPath)
	if err != nil {
		return nil, nil, fmt.Errorf("ctrl file: %w", err)
	}
	defer cf.Close()
	ctrl, err := config.ParseController(cf)
	if err != nil {
		return nil, nil, err
	}

	var devs []*config.DeviceConfig
	for _, path := range strings.Split(deviceList, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		df, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("device file %s: %w", path, err)
		}
		dev, err := config.ParseDevice(df)
		df.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("device file %s: %w", path, err)
		}
		devs = append(devs, dev)
	}
	if len(devs) == 0 {
		return nil, nil, fmt.Errorf("no device spec files given")
	}
	return ctrl, devs, nil
}

func openTracer(prefix string) (*trace.Writer, func(), error) {
	if prefix == "" {
		w := trace.NewStdoutWriter()
		return w, func() { w.Close() }, nil
	}
	w, err := trace.OpenWriter(prefix + ".trace")
	if err != nil {
		return nil, func() {}, err
	}
	return w, func() { w.Close() }, nil
}

func writeStatsOutput(prefix string, summary dramsim.Summary) error {
	if prefix == "" {
		return summary.WriteStats(os.Stdout)
	}
	f, err := os.Create(prefix + ".stats")
	if err != nil {
		return err
	}
	defer f.Close()
	return summary.WriteStats(f)
}

func writeTopologyDump(path string, ms *dramsim.MemorySystem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	topology.Dump(f, ms)
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: dramsim -t FILE -d FILE[,FILE...] [options]")
	fs.PrintDefaults()
}
