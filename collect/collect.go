// Package collect samples host metrics into archive rows.
package collect

import (
	"time"

	"git.unix.lgbt/diamondburned/tsplot/archive"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Keys lists the value keys of a sample in a stable order.
var Keys = []string{"cpu", "mem", "swap", "load1", "load5", "load15"}

// Sample takes a snapshot of the host.
func Sample() (archive.Row, error) {
	values := make(map[string]float64, len(Keys))
	now := time.Now()

	var err error

	metricUpdates := map[string]func(){
		"cpu":  func() { err = cpuPercent(values) },
		"mem":  func() { err = virtualMemory(values) },
		"swap": func() { err = swapMemory(values) },
		"load": func() { err = loadAvg(values) },
	}

	for key, fn := range metricUpdates {
		fn()
		if err != nil {
			return archive.Row{}, errors.Wrapf(err, "failed to get %s", key)
		}
	}

	return archive.NewRow(now, values), nil
}

func cpuPercent(values map[string]float64) error {
	// A zero interval compares against the previous call, so measure over a
	// short window instead.
	p, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil {
		return err
	}
	if len(p) == 0 {
		return errors.New("no cpu times")
	}
	values["cpu"] = p[0]
	return nil
}

func virtualMemory(values map[string]float64) error {
	m, err := mem.VirtualMemory()
	if err != nil {
		return err
	}
	values["mem"] = m.UsedPercent
	return nil
}

func swapMemory(values map[string]float64) error {
	m, err := mem.SwapMemory()
	if err != nil {
		return err
	}
	values["swap"] = m.UsedPercent
	return nil
}

func loadAvg(values map[string]float64) error {
	l, err := load.Avg()
	if err != nil {
		return err
	}
	values["load1"] = l.Load1
	values["load5"] = l.Load5
	values["load15"] = l.Load15
	return nil
}
