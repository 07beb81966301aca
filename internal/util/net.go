package util

import (
	"fmt"
	"net"
)

// Endpoint renders an address:port match key the way tcp_probe prints
// endpoints, so it can be used as a raw substring filter on trace lines.
func Endpoint(addr string, port uint16) string {
	return fmt.Sprintf("%s:%d", addr, port)
}

// HostAddr returns the address of host hN in the parking-lot topology:
// hN sits on subnet 172.16.(100+N).0/24 at .1.
func HostAddr(n int) string {
	return fmt.Sprintf("172.16.%d.1", 100+n)
}

func ValidAddr(addr string) bool {
	return net.ParseIP(addr) != nil
}
