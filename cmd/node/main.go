// Command node hosts the stub arrangement on one cluster member: it loads a
// ClusterConfig, builds a logrus-backed shim.Logger, and runs the CORE event
// loop until SIGINT/SIGTERM requests a graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nmota/reactorshim/arrangement/stub"
	"github.com/nmota/reactorshim/internal/config"
	"github.com/nmota/reactorshim/internal/logging"
	"github.com/nmota/reactorshim/shim"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("node", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the cluster YAML config (required)")
	name := fs.String("name", "", "override the config file's local node name")
	clientPort := fs.Int("client-port", 0, "override the config file's client-listener port")
	debug := fs.Bool("debug", false, "override the config file's debug flag")
	heartbeatTo := fs.String("heartbeat-to", "", "if set, periodically send a Ping to this peer name")
	heartbeatEvery := fs.Duration("heartbeat-every", time.Second, "heartbeat period, used only with -heartbeat-to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("-config is required")
	}

	debugSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "debug" {
			debugSet = true
		}
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(*name, *clientPort, *debug, debugSet)

	me := cfg.LocalName()
	log := logging.New(me, cfg.Debug)

	var arr *stub.Stub
	if *heartbeatTo != "" {
		dest := shim.Name(*heartbeatTo)
		arr = stub.NewWithTimer(cfg.Debug, dest, func(int) time.Duration { return *heartbeatEvery })
	} else {
		arr = stub.New(cfg.Debug)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return shim.Serve[int, stub.Incr, stub.Ack, stub.Ping, stub.ClientID](
		ctx, me, cfg.ClientPort, cfg.ClusterMap(), arr, log, shim.DefaultPollCap, nil,
	)
}
