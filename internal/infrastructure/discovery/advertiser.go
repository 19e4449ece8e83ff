// Package discovery 在局域网内通过 mDNS 广播与发现 SecondBrain 服务
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/secondbrain/backend/internal/infrastructure/log"
)

const (
	// ServiceType mDNS 服务类型
	ServiceType = "_secondbrain._tcp"
	// Domain mDNS 域
	Domain = "local."
)

// Advertiser mDNS 服务广播器
type Advertiser struct {
	mu      sync.Mutex
	server  *zeroconf.Server
	running bool
	logger  *slog.Logger
}

// NewAdvertiser 创建广播器
func NewAdvertiser() *Advertiser {
	return &Advertiser{logger: log.NewModuleLogger("discovery", "advertiser")}
}

// Start 开始广播服务
func (a *Advertiser) Start(instance string, port int, txt map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return fmt.Errorf("advertiser is already running")
	}

	records := make([]string, 0, len(txt))
	for k, v := range txt {
		records = append(records, k+"="+v)
	}

	server, err := zeroconf.Register(instance, ServiceType, Domain, port, records, nil)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	a.server = server
	a.running = true
	a.logger.Info("mDNS advertiser started",
		"instance", instance,
		"service", ServiceType,
		"port", port,
	)
	return nil
}

// Stop 停止广播
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.server.Shutdown()
	a.server = nil
	a.running = false
	a.logger.Info("mDNS advertiser stopped")
}

// IsRunning 是否正在广播
func (a *Advertiser) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Instance 局域网内发现的服务实例
type Instance struct {
	Name     string            `json:"name"`
	Endpoint string            `json:"endpoint"`
	Version  string            `json:"version,omitempty"`
	Txt      map[string]string `json:"txt,omitempty"`
}

// Browse 在 timeout 内收集局域网内的服务实例
func Browse(ctx context.Context, timeout time.Duration) ([]Instance, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 10)
	var (
		mu        sync.Mutex
		instances []Instance
	)
	go func() {
		for entry := range entries {
			if inst, ok := parseEntry(entry); ok {
				mu.Lock()
				instances = append(instances, inst)
				mu.Unlock()
			}
		}
	}()

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := resolver.Browse(browseCtx, ServiceType, Domain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse services: %w", err)
	}

	<-browseCtx.Done()

	mu.Lock()
	defer mu.Unlock()
	out := make([]Instance, len(instances))
	copy(out, instances)
	return out, nil
}

func parseEntry(entry *zeroconf.ServiceEntry) (Instance, bool) {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return Instance{}, false
	}
	txt := ParseTxt(entry.Text)
	return Instance{
		Name:     entry.Instance,
		Endpoint: fmt.Sprintf("http://%s:%d", entry.AddrIPv4[0], entry.Port),
		Version:  txt["version"],
		Txt:      txt,
	}, true
}

// ParseTxt 解析 key=value 形式的 TXT 记录
func ParseTxt(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		k, v, _ := strings.Cut(r, "=")
		if k != "" {
			out[k] = v
		}
	}
	return out
}
