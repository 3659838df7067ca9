package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servefab/servefab/cmd/reconciler/backends"
	"github.com/servefab/servefab/cmd/reconciler/recurring"
	"github.com/servefab/servefab/cmd/reconciler/sweep"
	"github.com/servefab/servefab/pkg/buildtime"
	kpool "github.com/servefab/servefab/pkg/conn/db/postgres/pool"
	configs "github.com/servefab/servefab/pkg/configs/reconciler"
	svcpg "github.com/servefab/servefab/pkg/domain/service/db/postgres"
	"github.com/servefab/servefab/pkg/loop"
	"github.com/servefab/servefab/pkg/utils/args"
	"github.com/servefab/servefab/pkg/utils/filewatch"
	"github.com/servefab/servefab/pkg/utils/retry"
	"github.com/servefab/servefab/pkg/utils/try"
	// blank-import serving backend packages here so their init
	// registers a reviver with the backends registry.
)

func main() {
	logger := log.Default()
	logger.SetPrefix("[reconciler] ")
	logger.Printf("servefab reconciler %s", buildtime.VERSION())

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	defer cancel()

	pconfig := flag.String(
		"config", os.Getenv("SERVEFAB_RECONCILER_CONFIG"), "path to config file",
	)
	interval := args.Parser(time.ParseDuration)
	flag.Var(interval, "interval", "sweep interval (overrides the config file)")
	ponce := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	{
		// restart (by the supervisor) on config change
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadReconcilerConfig(*pconfig)).OrFatal(logger)

	sweepInterval := conf.Interval()
	if interval.IsSet() {
		sweepInterval = interval.Value()
	}

	// the database may come up after us
	pool := try.To(retry.Blocking(
		ctx, retry.StaticBackoff(time.Second),
		func() (kpool.Pool, error) {
			p, err := kpool.Connect(ctx, conf.Database())
			if err != nil {
				logger.Printf("database is not ready (%v); retrying", err)
				return nil, fmt.Errorf("%w: %s", retry.ErrRetry, err)
			}
			return p, nil
		},
	)).OrFatal(logger)
	defer pool.Close()

	if err := svcpg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal(err)
	}

	store := svcpg.New(pool)
	reg := backends.Registry()

	var policy recurring.Policy = recurring.Forever(sweepInterval)
	if *ponce {
		policy = recurring.Once()
	}

	logger.Printf(
		`start sweeping /w policy "%s" (sources: %v)`,
		policy.String(), reg.Sources(),
	)

	task := sweep.Task(store, reg, conf.ProbeTimeout(), logger)
	corrected, err := loop.Start(ctx, 0, task.Applied(recurring.UntilError(policy)))
	logger.Printf("sweeping stopped after %d corrections", corrected)

	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Fatal(err, " (loop context is cancelled by: ", context.Cause(ctx), ")")
	}
	logger.Fatal(err)
}
