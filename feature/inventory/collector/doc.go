// Package collector captures a snapshot of the local machine as a
// reconcile.Record.
//
// Sources on Linux are /etc/os-release (or /usr/lib/os-release), the /proc
// files for kernel release, CPU, memory and boot time, and the network
// interfaces. A source that cannot be read leaves its field empty, so every
// snapshot carries the same field set in the same order.
//
// Multi-valued fields (IPAddresses, MACAddresses) are sorted, de-duplicated
// and joined with reconcile.MultiValueSeparator.
package collector
