package ceph

import "os"


//=========================================== Monitor Utils


// DefaultName falls back to the host's hostname when a monitor is
// started without an explicit name, grounded on the teacher's
// cmd/rdb/main.go hostname-based system identification.
func DefaultName() (string, error) {
	hostname, hostErr := os.Hostname()
	if hostErr != nil { return "", hostErr }
	return hostname, nil
}
