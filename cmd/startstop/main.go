package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"startstop/internal/app"
	"startstop/pkg/systemd"
)

func main() {
	var (
		cfgPath string
		check   bool
		windows int
	)
	flag.StringVar(&cfgPath, "config", "./startstop.yaml", "path to config (yaml or json)")
	flag.BoolVar(&check, "check", false, "validate the config, print the planned windows and exit")
	flag.IntVar(&windows, "windows", 3, "windows per task printed by -check (0 = all)")
	flag.Parse()

	if check {
		if err := printPlan(cfgPath, windows); err != nil {
			fmt.Fprintln(os.Stderr, "invalid:", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.Stop(stopCtx)
		stopCancel()
		os.Exit(1)
	}
	_, _ = systemd.Ready()
	go func() {
		_ = systemd.Watchdog(ctx, func() bool { return a.Err() == nil })
	}()

	exit := 0
	select {
	case <-ctx.Done():
	case <-a.Done():
		if err := a.Err(); err != nil {
			fmt.Println("fatal:", err)
			exit = 1
		}
	}

	_, _ = systemd.Stopping()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = a.Stop(stopCtx)
	stopCancel()
	os.Exit(exit)
}

func printPlan(cfgPath string, windows int) error {
	cfg, err := app.NewConfigManager(cfgPath).Parse()
	if err != nil {
		return err
	}
	plans, err := app.Plan(cfg, time.Now(), windows)
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()
	fmt.Printf("config ok: %d task(s), timezone %s\n", len(plans), loc)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tACTION\tSTEP\tPERIOD\tCYCLES\tWINDOW")
	for _, p := range plans {
		s := p.Schedule
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n", p.Spec.Name, p.Spec.Action, s.Step(), s.CyclePeriod, s.CyclesRemaining)
		for i, w := range p.Windows {
			fmt.Fprintf(tw, "\t\t\t\t#%d\t%s .. %s\n", i+1, w.Start.Format(time.RFC3339), w.Stop.Format(time.RFC3339))
		}
	}
	return tw.Flush()
}
