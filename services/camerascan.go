package services

import (
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"
)

// CameraBrand describes a supported IP camera brand and its RTSP layout
type CameraBrand struct {
	Name        string `json:"name"`
	RTSPPath    string `json:"rtspPath"`
	DefaultPort int    `json:"defaultPort"`
	Notes       string `json:"notes,omitempty"`
}

// SupportedBrands lists the camera brands the scanner recognizes
var SupportedBrands = []CameraBrand{
	{Name: "Hikvision", RTSPPath: "/Streaming/Channels/101/", DefaultPort: 554},
	{Name: "Dahua", RTSPPath: "/cam/realmonitor?channel=1&subtype=0", DefaultPort: 554},
	{Name: "Axis", RTSPPath: "/axis-media/media.amp", DefaultPort: 554},
	{Name: "Foscam", RTSPPath: "/videoMain", DefaultPort: 554},
	{Name: "Raspberry Pi", RTSPPath: "http://PI_IP:8081/", DefaultPort: 8081, Notes: "Requires motion software installation"},
	{Name: "Generic ONVIF", RTSPPath: "/onvif1", DefaultPort: 554},
}

// ScannedCamera is one simulated scan hit
type ScannedCamera struct {
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	RTSPUrl string `json:"rtspUrl"`
	Status  string `json:"status"`
}

// CameraScanner simulates the network discovery and connectivity checks
// that real camera hardware would answer. No packets leave the host; the
// outcomes are randomized placeholders.
type CameraScanner struct {
	rng *rand.Rand
}

// NewCameraScanner creates a scanner seeded from the clock
func NewCameraScanner() *CameraScanner {
	return &CameraScanner{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewCameraScannerSeeded creates a deterministic scanner
func NewCameraScannerSeeded(seed int64) *CameraScanner {
	return &CameraScanner{rng: rand.New(rand.NewSource(seed))}
}

// ScanNetwork pretends to sweep the given CIDR and returns 0-5 discovered
// cameras with plausible addresses inside the network.
func (s *CameraScanner) ScanNetwork(network string) ([]ScannedCamera, error) {
	_, subnet, err := net.ParseCIDR(network)
	if err != nil {
		return nil, fmt.Errorf("invalid network %q: %w", network, err)
	}

	base := subnet.IP.To4()
	if base == nil {
		return nil, fmt.Errorf("only IPv4 networks are supported, got %q", network)
	}

	count := s.rng.Intn(6)
	cameras := make([]ScannedCamera, 0, count)
	seen := map[int]bool{}

	for i := 0; i < count; i++ {
		// Last octet in 2..249, unique per scan
		host := 2 + s.rng.Intn(248)
		if seen[host] {
			continue
		}
		seen[host] = true

		brand := SupportedBrands[s.rng.Intn(len(SupportedBrands))]
		ip := fmt.Sprintf("%d.%d.%d.%d", base[0], base[1], base[2], host)

		cam := ScannedCamera{
			IP:     ip,
			Port:   brand.DefaultPort,
			Brand:  brand.Name,
			Model:  fmt.Sprintf("%s-%03d", strings.ToUpper(strings.Split(brand.Name, " ")[0]), 100+s.rng.Intn(900)),
			Status: "detected",
		}
		cam.RTSPUrl = fmt.Sprintf("rtsp://%s:%d%s", ip, brand.DefaultPort, brand.RTSPPath)

		// Most hits respond to a stream probe
		if s.rng.Float64() < 0.8 {
			cam.Status = "active"
		}

		cameras = append(cameras, cam)
	}

	return cameras, nil
}

// TestStream simulates probing an RTSP endpoint. Roughly one in five
// probes fails, mirroring flaky placeholder hardware.
func (s *CameraScanner) TestStream(rtspURL string) (bool, string) {
	if !strings.HasPrefix(rtspURL, "rtsp://") && !strings.HasPrefix(rtspURL, "http://") {
		return false, "unsupported stream URL scheme"
	}
	if s.rng.Float64() < 0.8 {
		return true, "stream reachable"
	}
	return false, "connection timed out"
}
