// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"bufio"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// flagDialer turns the serial/websocket flags into a dial function for
// the oven client, plus a human description of the chosen transport.
func flagDialer() (func() (io.ReadWriteCloser, error), string, error) {
	switch {
	case portName != "":
		name, baud := portName, baudRate
		dial := func() (io.ReadWriteCloser, error) {
			return OpenSerialConnection(name, baud)
		}
		return dial, fmt.Sprintf("serial port %s at %d baud", name, baud), nil

	case wsURL != "":
		rawURL, username, insecure := wsURL, wsUsername, wsNoSSLVerify
		password := ""
		if username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}
		dial := func() (io.ReadWriteCloser, error) {
			return OpenWebSocketConnection(rawURL, username, password, insecure)
		}
		return dial, fmt.Sprintf("WebSocket bridge %s", rawURL), nil
	}
	return nil, "", fmt.Errorf("no connection flags given")
}

// GetPassword obtains the WebSocket password from the OVENCTL_PASSWORD
// environment variable, or by prompting on the terminal.
func GetPassword() (string, error) {
	if password := os.Getenv("OVENCTL_PASSWORD"); password != "" {
		return password, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	if term.IsTerminal(int(syscall.Stdin)) {
		pw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	// Not a terminal (piped input): fall back to a plain line read.
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SerialConnection adapts a serial port to the read-deadline shape the
// exchange layer expects.
type SerialConnection struct {
	port serial.Port
}

// OpenSerialConnection opens a serial port with the 8N1 framing the
// oven bus uses.
func OpenSerialConnection(name string, baud int) (*SerialConnection, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &SerialConnection{port: port}, nil
}

func (c *SerialConnection) Read(p []byte) (int, error) {
	n, err := c.port.Read(p)
	if n == 0 && err == nil {
		// the port reports an expired read timeout as an empty read
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

func (c *SerialConnection) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

func (c *SerialConnection) Close() error {
	return c.port.Close()
}

// SetReadDeadline maps an absolute deadline onto the port's relative
// read timeout.
func (c *SerialConnection) SetReadDeadline(t time.Time) error {
	if t.IsZero() {
		return c.port.SetReadTimeout(serial.NoTimeout)
	}
	d := time.Until(t)
	if d <= 0 {
		d = time.Millisecond
	}
	return c.port.SetReadTimeout(d)
}

// WebSocketConnection adapts a WebSocket to a byte stream. Incoming
// binary messages are buffered so short reads behave like a socket.
type WebSocketConnection struct {
	conn   *websocket.Conn
	buffer []byte
	closed bool
}

// OpenWebSocketConnection dials a ws:// or wss:// bridge, optionally
// with HTTP Basic authentication.
func OpenWebSocketConnection(rawURL, username, password string, insecureSkipVerify bool) (*WebSocketConnection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid WebSocket URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("URL scheme must be ws:// or wss://, got %s://", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" && insecureSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	header := http.Header{}
	if username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		header.Set("Authorization", "Basic "+auth)
	}

	conn, resp, err := dialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}
	return &WebSocketConnection{conn: conn}, nil
}

func (c *WebSocketConnection) Read(p []byte) (int, error) {
	if c.closed {
		return 0, io.EOF
	}
	for len(c.buffer) == 0 {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if messageType == websocket.BinaryMessage {
			c.buffer = append(c.buffer, data...)
		}
	}
	n := copy(p, c.buffer)
	c.buffer = c.buffer[n:]
	return n, nil
}

func (c *WebSocketConnection) Write(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *WebSocketConnection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *WebSocketConnection) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}
