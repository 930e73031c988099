//go:build !linux

package main

import "errors"

func setRealtime(cpu, nice int) error {
	if cpu < 0 && nice == 0 {
		return nil
	}
	return errors.New("realtime setup only supported on linux")
}
