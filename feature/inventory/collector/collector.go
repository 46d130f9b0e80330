package collector

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/utils"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Field names of a collected snapshot, in the order they are emitted.
const (
	FieldComputerName = "ComputerName"
	FieldDomain       = "Domain"
	FieldOS           = "OS"
	FieldOSVersion    = "OSVersion"
	FieldKernel       = "Kernel"
	FieldArchitecture = "Architecture"
	FieldCPU          = "CPU"
	FieldCPUCores     = "CPUCores"
	FieldMemoryTotal  = "MemoryTotal"
	FieldIPAddresses  = "IPAddresses"
	FieldMACAddresses = "MACAddresses"
	FieldBootTime     = "BootTime"
	FieldCollectedAt  = "CollectedAt"
	FieldSnapshotID   = "SnapshotID"
)

// Interface is the part of a network interface a snapshot reports.
type Interface struct {
	Name     string
	MAC      string
	Addrs    []string
	Loopback bool
}

// Collector reads machine attributes from the local system.
// Every source is injectable; the zero value reads the real machine.
type Collector struct {
	// Root prefixes every file path. Empty means "/".
	Root string

	Hostname   func() (string, error)
	Interfaces func() ([]Interface, error)
	Now        func() time.Time
	NewID      func() string
}

// New returns a collector for the local machine.
func New() *Collector {
	return &Collector{}
}

// Collect produces one snapshot record. Unreadable sources leave their
// fields empty; only a missing host name is an error.
func (c *Collector) Collect(ctx context.Context) (reconcile.Record, error) {
	var rec reconcile.Record

	hostname, err := c.hostname()
	if err != nil {
		return rec, err
	}
	if strings.TrimSpace(hostname) == "" {
		return rec, errors.New("host name is empty")
	}
	name, domain, _ := strings.Cut(hostname, ".")
	if domain == "" {
		domain = c.nisDomain()
	}

	osRelease := c.osRelease()
	cpuModel, cores := c.cpuInfo()

	rec.Set(FieldComputerName, strings.ToUpper(name))
	rec.Set(FieldDomain, domain)
	rec.Set(FieldOS, utils.FirstNonEmpty(osRelease["PRETTY_NAME"], osRelease["NAME"], runtime.GOOS))
	rec.Set(FieldOSVersion, osRelease["VERSION_ID"])
	rec.Set(FieldKernel, strings.TrimSpace(c.readFile("proc/sys/kernel/osrelease")))
	rec.Set(FieldArchitecture, runtime.GOARCH)
	rec.Set(FieldCPU, cpuModel)
	if cores > 0 {
		rec.Set(FieldCPUCores, strconv.Itoa(cores))
	} else {
		rec.Set(FieldCPUCores, "")
	}
	rec.Set(FieldMemoryTotal, c.memoryTotal())

	ips, macs := c.network()
	rec.Set(FieldIPAddresses, strings.Join(ips, reconcile.MultiValueSeparator))
	rec.Set(FieldMACAddresses, strings.Join(macs, reconcile.MultiValueSeparator))

	rec.Set(FieldBootTime, c.bootTime())
	rec.Set(FieldCollectedAt, c.now().UTC().Format(time.RFC3339))
	rec.Set(FieldSnapshotID, c.newID())

	return rec, ctx.Err()
}

func (c *Collector) path(rel string) string {
	root := c.Root
	if root == "" {
		root = "/"
	}
	return filepath.Join(root, rel)
}

func (c *Collector) readFile(rel string) string {
	data, err := os.ReadFile(c.path(rel))
	if err != nil {
		return ""
	}
	return string(data)
}

func (c *Collector) hostname() (string, error) {
	if c.Hostname != nil {
		return c.Hostname()
	}
	return os.Hostname()
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Collector) newID() string {
	if c.NewID != nil {
		return c.NewID()
	}
	return uuid.NewString()
}

func (c *Collector) nisDomain() string {
	d := strings.TrimSpace(c.readFile("proc/sys/kernel/domainname"))
	if d == "(none)" {
		return ""
	}
	return d
}

// osRelease parses /etc/os-release, falling back to /usr/lib/os-release.
func (c *Collector) osRelease() map[string]string {
	values := make(map[string]string)
	for _, rel := range []string{"etc/os-release", "usr/lib/os-release"} {
		f, err := os.Open(c.path(rel))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return values
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if k, v, ok := utils.SplitKeyValue(line, "="); ok {
				values[k] = utils.Unquote(v)
			}
		}
		f.Close()
		return values
	}
	return values
}

func (c *Collector) cpuInfo() (model string, cores int) {
	for _, line := range strings.Split(c.readFile("proc/cpuinfo"), "\n") {
		k, v, ok := utils.SplitKeyValue(line, ":")
		if !ok {
			continue
		}
		switch k {
		case "processor":
			cores++
		case "model name", "Hardware", "cpu model":
			if model == "" {
				model = v
			}
		}
	}
	return model, cores
}

func (c *Collector) memoryTotal() string {
	for _, line := range strings.Split(c.readFile("proc/meminfo"), "\n") {
		if k, v, ok := utils.SplitKeyValue(line, ":"); ok && k == "MemTotal" {
			kb := utils.ToInt(v)
			if kb <= 0 {
				return ""
			}
			return humanize.IBytes(uint64(kb) * 1024)
		}
	}
	return ""
}

func (c *Collector) bootTime() string {
	for _, line := range strings.Split(c.readFile("proc/stat"), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "btime" {
			secs, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return ""
			}
			return time.Unix(secs, 0).UTC().Format(time.RFC3339)
		}
	}
	return ""
}

func (c *Collector) network() (ips, macs []string) {
	list := c.Interfaces
	if list == nil {
		list = systemInterfaces
	}
	ifaces, err := list()
	if err != nil {
		return nil, nil
	}

	for _, iface := range ifaces {
		if iface.Loopback {
			continue
		}
		if iface.MAC != "" {
			macs = append(macs, strings.ToUpper(iface.MAC))
		}
		for _, addr := range iface.Addrs {
			ip := addr
			if parsed, _, err := net.ParseCIDR(addr); err == nil {
				ip = parsed.String()
			}
			if parsed := net.ParseIP(ip); parsed == nil || parsed.IsLinkLocalUnicast() {
				continue
			}
			ips = append(ips, ip)
		}
	}
	return utils.SortedUnique(ips), utils.SortedUnique(macs)
}

func systemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		item := Interface{
			Name:     iface.Name,
			MAC:      iface.HardwareAddr.String(),
			Loopback: iface.Flags&net.FlagLoopback != 0,
		}
		addrs, err := iface.Addrs()
		if err == nil {
			for _, a := range addrs {
				item.Addrs = append(item.Addrs, a.String())
			}
		}
		out = append(out, item)
	}
	return out, nil
}
