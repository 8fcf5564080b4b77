// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Exchange performs request/response round trips over a byte-stream
// transport, reassembling responses that the bridge splits across reads.
type Exchange struct {
	Conn    io.ReadWriter
	Timeout time.Duration // per-read deadline, 0 means wait forever
	Trace   io.Writer     // hexdumps SEND/RECV when set
	Stats   *Stats
}

// readDeadliner is implemented by transports that support read timeouts
// (net.Conn and the cmd-layer serial/websocket adapters).
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// sendAll writes the whole of p, looping over partial writes.
func sendAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

// do sends req and reads into resp until parse stops returning
// ErrShortMessage. Any other parse result, success or failure, is
// definitive: the response is complete and must not be waited on
// further.
func (x *Exchange) do(req, resp *Datagram, parse func(*Datagram) error) error {
	if x.Conn == nil || req == nil || resp == nil {
		return ErrInvalidParam
	}
	x.Stats.countExchange()
	if x.Trace != nil {
		fmt.Fprintf(x.Trace, "SEND:\n%s", Hexdump(req.Bytes()))
	}
	if err := sendAll(x.Conn, req.Bytes()); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	resp.Reset()
	buf := make([]byte, MaxDatagram)
	for {
		if rd, ok := x.Conn.(readDeadliner); ok && x.Timeout > 0 {
			rd.SetReadDeadline(time.Now().Add(x.Timeout))
		}
		n, err := x.Conn.Read(buf)
		if err != nil {
			if os.IsTimeout(err) {
				x.Stats.countTimeout()
				return ErrTimeout
			}
			return fmt.Errorf("recv: %w", err)
		}
		if n == 0 {
			continue
		}
		if _, err := resp.Append(buf[:n]); err != nil {
			return fmt.Errorf("reassembly: %w", err)
		}
		if x.Trace != nil {
			fmt.Fprintf(x.Trace, "RECV:\n%s", Hexdump(resp.Bytes()))
		}
		perr := parse(resp)
		if errors.Is(perr, ErrShortMessage) {
			if resp.Len() == MaxDatagram {
				// Ran out of buffer and still couldn't read the message.
				// Can't happen for well-formed responses.
				return fmt.Errorf("response larger than any valid frame: %w", ErrBadMessage)
			}
			x.Stats.countContinuation()
			continue
		}
		x.Stats.countResult(perr)
		return perr
	}
}

// ReadN reads len(vals) consecutive registers starting at addr. The
// returned count is what the oven actually sent; see ParseReadN for the
// over-long case.
func (x *Exchange) ReadN(addr uint16, vals []uint16) (int, error) {
	var req, resp Datagram
	if err := req.BuildReadN(addr, len(vals)); err != nil {
		return 0, err
	}
	words := 0
	err := x.do(&req, &resp, func(d *Datagram) error {
		var perr error
		words, perr = d.ParseReadN(vals)
		return perr
	})
	return words, err
}

// Write writes val to the single register addr and checks the oven's
// echo. A non-matching echo surfaces ErrMismatch: the write may or may
// not have taken effect.
func (x *Exchange) Write(addr, val uint16) error {
	var req, resp Datagram
	if err := req.BuildWrite(addr, val); err != nil {
		return err
	}
	return x.do(&req, &resp, func(d *Datagram) error {
		aaddr, aval, perr := d.ParseWrite()
		if perr != nil {
			return perr
		}
		if aaddr != addr || aval != val {
			return fmt.Errorf("write echo %04x=%04x, requested %04x=%04x: %w",
				aaddr, aval, addr, val, ErrMismatch)
		}
		return nil
	})
}

// WriteN writes vals to consecutive registers starting at addr and
// checks the oven's echo of address and count.
func (x *Exchange) WriteN(addr uint16, vals []uint16) error {
	var req, resp Datagram
	if err := req.BuildWriteN(addr, vals); err != nil {
		return err
	}
	return x.do(&req, &resp, func(d *Datagram) error {
		aaddr, awords, perr := d.ParseWriteN()
		if perr != nil {
			return perr
		}
		if aaddr != addr || awords != len(vals) {
			return fmt.Errorf("write-n echo %04x/%d words, requested %04x/%d: %w",
				aaddr, awords, addr, len(vals), ErrMismatch)
		}
		return nil
	})
}
