// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Adin2111 runs the device daemon standalone.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinasystems/adin2111/cmd/adin2111d"
)

func main() {
	cmd := new(adin2111d.Command)
	args := os.Args[1:]
	for _, a := range args {
		if a == "-h" || a == "-help" || a == "--help" {
			fmt.Println(cmd.Usage())
			return
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cmd.Close()
	}()

	if err := cmd.Main(args...); err != nil {
		fmt.Fprintln(os.Stderr, cmd.String()+":", err)
		os.Exit(1)
	}
}
