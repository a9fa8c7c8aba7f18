package utils

import (
	"strconv"
	"strings"
)


// NormalizePort ensures a port is rendered with a leading colon so it
// can be concatenated directly onto a host/address string.
func NormalizePort(port int) string {
	s := strconv.Itoa(port)
	if strings.HasPrefix(s, ":") { return s }
	return ":" + s
}
