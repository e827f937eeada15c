// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"fmt"
	"net"
	"strconv"
)

// IpAddress4 is a raw IPv4 address, stored big-endian (network byte order).
type IpAddress4 [4]byte

func (a IpAddress4) String() string {
	return net.IP(a[:]).String()
}

// IpAddress6 is a raw IPv6 address, stored big-endian.
type IpAddress6 [16]byte

func (a IpAddress6) String() string {
	return net.IP(a[:]).String()
}

// IpEndpoint pairs an IPv4 or IPv6 address with a port, ABI-neutral (no
// dependency on sockaddr layout; see ioctx.go for the unix sockaddr
// conversion used when actually issuing connect/bind/accept syscalls).
type IpEndpoint struct {
	Addr4 IpAddress4
	Addr6 IpAddress6
	V6    bool
	Port  uint16
}

// ParseIpEndpoint parses "host:port" (IPv4 or IPv6, bracketed or not) into
// an IpEndpoint.
func ParseIpEndpoint(s string) (IpEndpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return IpEndpoint{}, &TypeError{Cause: err, Message: "ilias: invalid endpoint: " + s}
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return IpEndpoint{}, &TypeError{Cause: err, Message: "ilias: invalid port: " + portStr}
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return IpEndpoint{}, &TypeError{Message: "ilias: invalid address: " + host}
	}
	return endpointFromNetIP(ip, uint16(port)), nil
}

func endpointFromNetIP(ip net.IP, port uint16) IpEndpoint {
	if v4 := ip.To4(); v4 != nil {
		var ep IpEndpoint
		copy(ep.Addr4[:], v4)
		ep.Port = port
		return ep
	}
	var ep IpEndpoint
	copy(ep.Addr6[:], ip.To16())
	ep.V6 = true
	ep.Port = port
	return ep
}

// IP returns the standard library net.IP view of the endpoint's address.
func (e IpEndpoint) IP() net.IP {
	if e.V6 {
		return net.IP(e.Addr6[:])
	}
	return net.IP(e.Addr4[:])
}

func (e IpEndpoint) String() string {
	return net.JoinHostPort(e.IP().String(), strconv.Itoa(int(e.Port)))
}

// UnixEndpoint is a filesystem (or abstract, on Linux) Unix domain socket
// address.
type UnixEndpoint struct {
	Path string
}

func (e UnixEndpoint) String() string {
	return fmt.Sprintf("unix:%s", e.Path)
}

// EndpointView is a borrowed reference to an endpoint passed into an I/O
// operation without transferring ownership - in Go this is simply the
// IpEndpoint/UnixEndpoint value itself, since both are small value types;
// the type exists to name the concept from the spec's borrowed-reference
// surface (callers that want "mutable" semantics just reassign the local
// variable they pass by pointer).
type EndpointView = IpEndpoint

// MutableEndpointView is the output parameter used by Accept/RecvFrom; it
// is a pointer so the operation can populate the remote peer's address.
type MutableEndpointView = *IpEndpoint
