// ABOUTME: mDNS discovery of echo responders on the local network
// ABOUTME: Responders advertise _echolat._tcp; clients browse when no endpoint is configured
package discovery

import (
	"context"
	"fmt"
	"net"

	"github.com/echolat/echolat-go/internal/logging"
	"github.com/hashicorp/mdns"
)

const serviceType = "_echolat._tcp"

// Config holds discovery configuration.
type Config struct {
	ServiceName string
	Port        int
	Colo        string // advertised in the TXT record, informational only
}

// Manager handles mDNS advertisement and browsing.
type Manager struct {
	config     Config
	ctx        context.Context
	cancel     context.CancelFunc
	responders chan *ResponderInfo
}

// ResponderInfo describes a discovered responder.
type ResponderInfo struct {
	Name string
	Host string
	Port int
}

// Addr returns the endpoint in host:port form.
func (r *ResponderInfo) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// NewManager creates a discovery manager.
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:     config,
		ctx:        ctx,
		cancel:     cancel,
		responders: make(chan *ResponderInfo, 10),
	}
}

// Advertise announces this responder via mDNS until Stop is called.
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	txt := []string{"path=/echo"}
	if m.config.Colo != "" {
		txt = append(txt, "colo="+m.config.Colo)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		serviceType,
		"",
		"",
		m.config.Port,
		ips,
		txt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	logging.L().Infof("advertising %s as %s on port %d", serviceType, m.config.ServiceName, m.config.Port)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse starts searching for responders; results arrive on Responders.
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}
				info := &ResponderInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}

				logging.L().Infof("discovered responder: %s at %s", info.Name, info.Addr())

				select {
				case m.responders <- info:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: serviceType,
			Domain:  "local",
			Timeout: 3,
			Entries: entries,
		}

		mdns.Query(params)
		close(entries)
	}
}

// Responders returns the channel of discovered responders.
func (m *Manager) Responders() <-chan *ResponderInfo {
	return m.responders
}

// Stop stops advertisement and browsing.
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns non-loopback IPv4 addresses of up interfaces.
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
