package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const dialTimeout = 5 * time.Second

// Sock adapts a stream connection to the Channel contract using 4-byte
// big-endian length framing. It gives the protocol real process separation
// when the simulation and the agent do not share an address space.
type Sock struct {
	conn     net.Conn
	r        *bufio.Reader
	capacity int
	sendBuf  []byte
	recvBuf  []byte
}

// Dial connects to a listening peer. network is "unix" or "tcp".
func Dial(network, addr string, capacity int) (*Sock, error) {
	conn, err := net.DialTimeout(network, addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s %s: %w", network, addr, err)
	}
	return newSock(conn, capacity), nil
}

// Listen accepts exactly one peer on addr and returns its channel. The
// listener is closed after the first accept: a channel pair belongs to a
// single environment id.
func Listen(network, addr string, capacity int) (*Sock, error) {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s %s: %w", network, addr, err)
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept on %s: %w", addr, err)
	}
	return newSock(conn, capacity), nil
}

func newSock(conn net.Conn, capacity int) *Sock {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sock{
		conn:     conn,
		r:        bufio.NewReader(conn),
		capacity: capacity,
		sendBuf:  make([]byte, capacity),
		recvBuf:  make([]byte, capacity),
	}
}

func (s *Sock) SendBegin() ([]byte, error) {
	return s.sendBuf, nil
}

func (s *Sock) SendEnd(n int) error {
	if n > s.capacity {
		return ErrTooLarge
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(n))
	if _, err := s.conn.Write(hdr[:]); err != nil {
		return fmt.Errorf("transport: send frame header: %w", err)
	}
	if _, err := s.conn.Write(s.sendBuf[:n]); err != nil {
		return fmt.Errorf("transport: send frame body: %w", err)
	}
	return nil
}

func (s *Sock) RecvBegin() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("transport: recv frame header: %w", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if int(n) > s.capacity {
		return nil, ErrTooLarge
	}
	if _, err := io.ReadFull(s.r, s.recvBuf[:n]); err != nil {
		return nil, fmt.Errorf("transport: recv frame body: %w", err)
	}
	return s.recvBuf[:n], nil
}

func (s *Sock) RecvEnd() error { return nil }

func (s *Sock) Capacity() int { return s.capacity }

func (s *Sock) Close() error { return s.conn.Close() }
