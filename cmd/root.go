// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovenworks/ovenctl/pkg/netmb"
	"github.com/ovenworks/ovenctl/pkg/oven"
)

var (
	// TCP bridge flags
	hostName string
	tcpPort  int

	// Serial flags, for talking to the oven bus directly
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	timeout time.Duration
	retries int
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ovenctl",
	Short: "Control and monitor BINDER laboratory ovens",
	Long: `Ovenctl talks net-MODBus to BINDER laboratory ovens: raw register
access, status and setpoint control, temperature ramp profiles and a
live monitoring view.

Connection modes:
  TCP:       --host oven.lab [--tcp-port 10001]     (Lantronix XPort bridge)
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the
OVENCTL_PASSWORD environment variable, or prompted for if not set.
There is deliberately no --password flag, to keep credentials out of
shell history.`,
	Version: "1.2.0",

	// main prints errors itself so it can map them to exit codes
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&hostName, "host", "H", "", "Oven hostname or IP (TCP bridge)")
	rootCmd.PersistentFlags().IntVar(&tcpPort, "tcp-port", netmb.BridgePort, "TCP port of the bridge")

	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 2500*time.Millisecond, "Connect and response timeout")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 3, "Connection attempts before giving up")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Hexdump every exchange to stderr")
}

// newClient builds an oven client from the connection flags.
func newClient() (*oven.Client, error) {
	c := &oven.Client{
		Host:    hostName,
		Port:    tcpPort,
		Timeout: timeout,
		Retries: retries,
		Trace:   traceWriter(),
		Stats:   netmb.NewStats(),
	}
	if hostName == "" {
		if portName == "" && wsURL == "" {
			return nil, fmt.Errorf("one of --host, --port or --url must be given")
		}
		dial, desc, err := flagDialer()
		if err != nil {
			return nil, err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Using %s\n", desc)
		}
		c.Dial = dial
	}
	return c, nil
}

func traceWriter() io.Writer {
	if verbose {
		return os.Stderr
	}
	return nil
}

// writeCaution warns the operator after a write whose outcome is
// unknown: the oven may have applied it even though the response was
// missing or mangled.
func writeCaution() {
	fmt.Fprintln(os.Stderr, "CAUTION!  The oven may be in an unexpected state.")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
