package sysstats

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"

	"github.com/byusi/indexfo/pkg/fsindex"
)

// Provider reports host and process statistics as a JSON-serializable map.
// The stats endpoint treats the provider as optional: a nil provider yields
// a tagged error field instead of a failure.
type Provider interface {
	Stats() map[string]interface{}
}

// HostProvider implements Provider with gopsutil. Individual metric
// failures degrade to zero values with a warning log; the whole snapshot
// never fails.
type HostProvider struct {
	logger   *logrus.Logger
	diskPath string
}

// NewHostProvider creates a provider measuring the host and the serving
// process. diskPath is the mount whose usage is reported, normally the
// data root.
func NewHostProvider(logger *logrus.Logger, diskPath string) *HostProvider {
	if diskPath == "" {
		diskPath = "/"
	}
	return &HostProvider{logger: logger, diskPath: diskPath}
}

// Stats collects a point-in-time snapshot.
func (p *HostProvider) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"system": p.systemInfo(),
		"memory": p.memoryInfo(),
		"disk":   p.diskInfo(),
	}

	if info, err := host.Info(); err == nil {
		stats["uptime"] = (time.Duration(info.Uptime) * time.Second).String()
	} else {
		p.logger.Warnf("Failed to get host uptime: %v", err)
		stats["uptime"] = ""
	}

	stats["process"] = p.processInfo()
	return stats
}

func (p *HostProvider) systemInfo() map[string]interface{} {
	info, err := host.Info()
	if err != nil {
		p.logger.Warnf("Failed to get host info: %v", err)
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"platform":         info.Platform,
		"platform_version": info.PlatformVersion,
		"hostname":         info.Hostname,
		"processor":        p.processorName(),
	}
}

func (p *HostProvider) processorName() string {
	infos, err := cpu.Info()
	if err != nil || len(infos) == 0 {
		return ""
	}
	return infos[0].ModelName
}

func (p *HostProvider) memoryInfo() map[string]interface{} {
	vm, err := mem.VirtualMemory()
	if err != nil {
		p.logger.Warnf("Failed to get memory info: %v", err)
		vm = &mem.VirtualMemoryStat{}
	}
	return map[string]interface{}{
		"total":   fsindex.FormatSize(int64(vm.Total)),
		"used":    fsindex.FormatSize(int64(vm.Used)),
		"percent": vm.UsedPercent,
	}
}

func (p *HostProvider) diskInfo() map[string]interface{} {
	usage, err := disk.Usage(p.diskPath)
	if err != nil {
		p.logger.Warnf("Failed to get disk usage for %s: %v", p.diskPath, err)
		usage = &disk.UsageStat{}
	}
	return map[string]interface{}{
		"total":   fsindex.FormatSize(int64(usage.Total)),
		"used":    fsindex.FormatSize(int64(usage.Used)),
		"percent": usage.UsedPercent,
	}
}

func (p *HostProvider) processInfo() map[string]interface{} {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		p.logger.Warnf("Failed to get process info: %v", err)
		return map[string]interface{}{}
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		p.logger.Warnf("Failed to get CPU percent: %v", err)
		cpuPercent = 0.0
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		p.logger.Warnf("Failed to get process memory info: %v", err)
		memInfo = &process.MemoryInfoStat{}
	}

	return map[string]interface{}{
		"cpu_percent": cpuPercent,
		"rss":         fsindex.FormatSize(int64(memInfo.RSS)),
	}
}
