//go:build linux

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setRealtime pins the calling thread to cpu and renices the process. The
// caller must hold runtime.LockOSThread.
func setRealtime(cpu, nice int) error {
	if cpu >= 0 {
		var set unix.CPUSet
		set.Zero()
		set.Set(cpu)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			return fmt.Errorf("sched_setaffinity cpu %d: %w", cpu, err)
		}
	}
	if nice != 0 {
		if err := unix.Setpriority(unix.PRIO_PROCESS, 0, nice); err != nil {
			return fmt.Errorf("setpriority %d: %w", nice, err)
		}
	}
	return nil
}
