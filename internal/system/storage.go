package system

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/shirou/gopsutil/v3/disk"
)

// pseudoFS lists filesystem types that are not backed by a block device.
var pseudoFS = map[string]bool{
	"sysfs": true, "proc": true, "devtmpfs": true, "tmpfs": true,
	"cgroup": true, "cgroup2": true, "debugfs": true, "tracefs": true,
	"securityfs": true, "hugetlbfs": true, "mqueue": true, "fusectl": true,
	"configfs": true, "pstore": true, "bpf": true, "ramfs": true,
	"rpc_pipefs": true, "nsfs": true, "autofs": true, "efivarfs": true,
	"squashfs": true, "iso9660": true, "devpts": true, "overlay": true,
}

// realPartitions drops pseudo filesystems and repeated mounts of the same
// device, keeping the first mount point seen.
func realPartitions(parts []disk.PartitionStat) []disk.PartitionStat {
	seen := make(map[string]bool, len(parts))
	out := make([]disk.PartitionStat, 0, len(parts))
	for _, p := range parts {
		if pseudoFS[p.Fstype] {
			continue
		}
		if p.Device != "" && seen[p.Device] {
			continue
		}
		seen[p.Device] = true
		out = append(out, p)
	}
	return out
}

// solidState guesses whether device is flash storage. The block queue's
// rotational flag wins when sysfs exposes it; otherwise NVMe naming counts
// as solid state and everything else is treated as rotational.
func solidState(sysfs, device string) bool {
	name := filepath.Base(device)
	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		name = filepath.Base(resolved)
	}

	for _, candidate := range []string{name, parentDisk(name)} {
		if candidate == "" {
			continue
		}
		switch readString(filepath.Join(sysfs, "block", candidate, "queue"), "rotational") {
		case "0":
			return true
		case "1":
			return false
		}
	}

	return strings.Contains(strings.ToLower(device), "nvme")
}

// parentDisk strips the partition suffix from a block device name:
// sda1 -> sda, nvme0n1p2 -> nvme0n1, mmcblk0p1 -> mmcblk0.
func parentDisk(name string) string {
	trimmed := strings.TrimRightFunc(name, unicode.IsDigit)
	if trimmed == name || trimmed == "" {
		return ""
	}

	if strings.HasSuffix(trimmed, "p") && len(trimmed) > 1 && unicode.IsDigit(rune(trimmed[len(trimmed)-2])) {
		return trimmed[:len(trimmed)-1]
	}
	if strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk") {
		// Whole-disk names like nvme0n1 have no partition suffix.
		return ""
	}
	return trimmed
}
