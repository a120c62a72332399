package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"
)

var processStart = time.Now()

// SysHealth is a point-in-time view of the running process.
type SysHealth struct {
	HeapMB       uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	Uptime       time.Duration
	DataDiskSize string
}

// GetSysHealth samples the runtime and measures the data directory.
func GetSysHealth(dataDir string) SysHealth {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return SysHealth{
		HeapMB:       ms.HeapAlloc >> 20,
		SysMB:        ms.Sys >> 20,
		NumGC:        ms.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		Uptime:       time.Since(processStart).Round(time.Second),
		DataDiskSize: humanBytes(dirSize(dataDir)),
	}
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
