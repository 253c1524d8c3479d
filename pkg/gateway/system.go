package gateway

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo describes the machine the gateway runs on.
type SystemInfo struct {
	Platform string `json:"platform"`
	Release  string `json:"release"`
	Arch     string `json:"arch"`
	Hostname string `json:"hostname,omitempty"`
	Uptime   uint64 `json:"uptime,omitempty"` // seconds
	TotalMem uint64 `json:"totalMem"`
	FreeMem  uint64 `json:"freeMem"`
	CPUs     int    `json:"cpus"`
}

// handleSystemInfo reports what it can; lookups that fail leave their
// fields empty.
func (s *Server) handleSystemInfo(c *gin.Context) {
	ctx := c.Request.Context()
	info := SystemInfo{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUs:     runtime.NumCPU(),
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Release = h.KernelVersion
		info.Hostname = h.Hostname
		info.Uptime = h.Uptime
	} else {
		s.logger.Debug().Err(err).Msg("Host info unavailable")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMem = vm.Total
		info.FreeMem = vm.Available
	} else {
		s.logger.Debug().Err(err).Msg("Memory info unavailable")
	}

	c.JSON(http.StatusOK, info)
}
