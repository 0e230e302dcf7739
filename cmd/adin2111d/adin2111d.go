// Copyright © 2025 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package adin2111d is the adin2111 device daemon.  It exposes the spi
// bus on a unix stream socket (one connection per chip-select window,
// one byte each way per transfer), the three packet endpoints on unix
// datagram sockets (one frame per datagram), and publishes port
// counters to the local redis hash.
package adin2111d

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"

	"github.com/platinasystems/adin2111"
	"github.com/platinasystems/adin2111/ethernet"
	"github.com/platinasystems/adin2111/event"
)

const DefaultRunDir = "/run/adin2111"

type Command struct {
	mu   sync.Mutex // serializes all device access
	dev  *adin2111.Device
	ev   *event.Queue
	pub  *publisher.Publisher
	last map[string]uint64
	stop chan struct{}
	done sync.WaitGroup
}

func (*Command) String() string { return "adin2111d" }

func (*Command) Usage() string {
	return "adin2111d [-dual-mac] [-store-and-forward] [-publish] " +
		"[-dir DIR] [-table SIZE] [-mac1 X] [-mac2 X]"
}

func (c *Command) Main(args ...string) error {
	flag, args := flags.New(args, "-dual-mac", "-store-and-forward",
		"-publish")
	parm, args := parms.New(args, "-dir", "-table", "-mac1", "-mac2")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}

	dir := DefaultRunDir
	if parm.ByName["-dir"] != "" {
		dir = parm.ByName["-dir"]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	cfg := adin2111.Config{
		DualMac:         flag.ByName["-dual-mac"],
		StoreAndForward: flag.ByName["-store-and-forward"],
	}
	if s := parm.ByName["-table"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("-table %s: %w", s, err)
		}
		cfg.TableSize = n
	}
	for i, name := range []string{"-mac1", "-mac2"} {
		if s := parm.ByName[name]; s != "" {
			a, err := ethernet.ParseAddress(s)
			if err != nil {
				return fmt.Errorf("%s %s: %w", name, s, err)
			}
			cfg.Mac[i] = a
		}
	}
	cfg.IRQ = func(level bool) {
		log.Print("adin2111d: irq ", level)
	}

	c.stop = make(chan struct{})
	c.last = make(map[string]uint64)
	c.ev = event.New()

	eps := make([]*endpoint, adin2111.HostPort+1)
	for p := adin2111.Port1; p <= adin2111.HostPort; p++ {
		ep, err := newEndpoint(c, p, filepath.Join(dir, p.String()+".sock"))
		if err != nil {
			return err
		}
		defer ep.close()
		eps[p] = ep
		cfg.Ports[p] = ep
	}
	cfg.Events = c.ev
	c.dev = adin2111.New(cfg)
	defer c.dev.Close()

	spi, err := net.Listen("unix", filepath.Join(dir, "spi.sock"))
	if err != nil {
		return err
	}
	defer spi.Close()

	if flag.ByName["-publish"] {
		if err := c.openPublisher(); err != nil {
			return err
		}
		defer c.pub.Close()
	}

	for _, ep := range eps {
		c.done.Add(1)
		go ep.serve()
	}
	c.done.Add(1)
	go c.serveSpi(spi)

	log.Print("adin2111d: ", c.dev.Id(), " up in ", dir)
	c.run()
	c.done.Wait()
	return nil
}

func (c *Command) Close() error {
	close(c.stop)
	return nil
}

// run drives the virtual clock from the wall clock and publishes
// counters until stopped.
func (c *Command) run() {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	tp := time.NewTicker(5 * time.Second)
	defer tp.Stop()

	wall := time.Now()
	for {
		select {
		case <-c.stop:
			return
		case now := <-t.C:
			c.mu.Lock()
			c.ev.Advance(now.Sub(wall))
			c.mu.Unlock()
			wall = now
		case <-tp.C:
			c.publish()
		}
	}
}

// openPublisher waits for the local redis to come up the way the other
// daemons do, then opens the publisher channel.
func (c *Command) openPublisher() error {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
	}
	for {
		err := redis.IsReady()
		if err == nil {
			break
		}
		if b.Attempt() > 10 {
			return err
		}
		select {
		case <-c.stop:
			return err
		case <-time.After(b.Duration()):
		}
	}
	var err error
	c.pub, err = publisher.New()
	return err
}

func (c *Command) publish() {
	if c.pub == nil {
		return
	}
	c.mu.Lock()
	var snap [adin2111.HostPort + 1]adin2111.PortCounters
	for p := adin2111.Port1; p <= adin2111.HostPort; p++ {
		snap[p] = c.dev.Counters(p)
	}
	ready := c.dev.Ready()
	c.mu.Unlock()

	c.pubUint("ready", map[bool]uint64{false: 0, true: 1}[ready])
	for p := adin2111.Port1; p <= adin2111.HostPort; p++ {
		pre := p.String() + "."
		c.pubUint(pre+"rx.packets", snap[p].RxPackets)
		c.pubUint(pre+"rx.bytes", snap[p].RxBytes)
		c.pubUint(pre+"rx.errors", snap[p].RxErrors)
		c.pubUint(pre+"tx.packets", snap[p].TxPackets)
		c.pubUint(pre+"tx.bytes", snap[p].TxBytes)
		c.pubUint(pre+"tx.errors", snap[p].TxErrors)
	}
}

func (c *Command) pubUint(k string, v uint64) {
	k = "adin2111." + k
	if last, ok := c.last[k]; ok && last == v {
		return
	}
	c.pub.Print(k, ": ", v)
	c.last[k] = v
}

// serveSpi accepts chip-select windows.  The select line follows the
// connection: accept asserts, close deasserts, and every byte written
// is answered with the byte shifted out of the device.
func (c *Command) serveSpi(l net.Listener) {
	defer c.done.Done()
	go func() {
		<-c.stop
		l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-c.stop:
			default:
				log.Print("adin2111d: spi accept: ", err)
			}
			return
		}
		c.done.Add(1)
		go c.spiSession(conn)
	}
}

func (c *Command) spiSession(conn net.Conn) {
	defer c.done.Done()
	defer conn.Close()

	c.mu.Lock()
	c.dev.ChipSelect(true)
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.dev.ChipSelect(false)
		c.mu.Unlock()
	}()

	var b [1]byte
	for {
		if _, err := io.ReadFull(conn, b[:]); err != nil {
			return
		}
		c.mu.Lock()
		b[0] = c.dev.Transfer(b[0])
		c.mu.Unlock()
		if _, err := conn.Write(b[:]); err != nil {
			return
		}
	}
}

// endpoint is one packet port on a unix datagram socket.  The peer is
// whoever sent us a frame last; egress goes back to that address.
type endpoint struct {
	c    *Command
	port adin2111.Port
	conn *net.UnixConn

	mu   sync.Mutex
	peer *net.UnixAddr
}

func newEndpoint(c *Command, p adin2111.Port, path string) (*endpoint, error) {
	conn, err := net.ListenUnixgram("unixgram",
		&net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return nil, err
	}
	return &endpoint{c: c, port: p, conn: conn}, nil
}

func (ep *endpoint) close() { ep.conn.Close() }

func (ep *endpoint) serve() {
	c := ep.c
	defer c.done.Done()
	go func() {
		<-c.stop
		ep.conn.Close()
	}()
	buf := make([]byte, ethernet.MaxFrameBytes+1)
	for {
		n, from, err := ep.conn.ReadFromUnix(buf)
		if err != nil {
			select {
			case <-c.stop:
			default:
				log.Print("adin2111d: ", ep.port, " read: ", err)
			}
			return
		}
		ep.mu.Lock()
		ep.peer = from
		ep.mu.Unlock()

		c.mu.Lock()
		if ep.port == adin2111.HostPort {
			c.dev.HostTransmit(buf[:n])
		} else {
			c.dev.ReceivePacket(ep.port, buf[:n])
		}
		c.mu.Unlock()
	}
}

// SendPacket is the device's egress path; called with the daemon mutex
// already held, so it must not call back into the device.
func (ep *endpoint) SendPacket(b []byte) {
	ep.mu.Lock()
	peer := ep.peer
	ep.mu.Unlock()
	if peer == nil {
		return // nobody on the wire yet
	}
	if _, err := ep.conn.WriteToUnix(b, peer); err != nil {
		log.Print("adin2111d: ", ep.port, " write: ", err)
	}
}
