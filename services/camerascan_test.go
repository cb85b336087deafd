package services

import (
	"strings"
	"testing"
)

func TestScanNetworkRejectsBadCIDR(t *testing.T) {
	s := NewCameraScannerSeeded(1)
	if _, err := s.ScanNetwork("not-a-network"); err == nil {
		t.Error("Expected error for invalid CIDR")
	}
	if _, err := s.ScanNetwork("2001:db8::/64"); err == nil {
		t.Error("Expected error for IPv6 network")
	}
}

func TestScanNetworkResultsInsideSubnet(t *testing.T) {
	s := NewCameraScannerSeeded(42)

	found := false
	for i := 0; i < 20 && !found; i++ {
		cameras, err := s.ScanNetwork("192.168.10.0/24")
		if err != nil {
			t.Fatalf("ScanNetwork failed: %v", err)
		}
		for _, cam := range cameras {
			found = true
			if !strings.HasPrefix(cam.IP, "192.168.10.") {
				t.Errorf("Camera IP %s outside scanned subnet", cam.IP)
			}
			if !strings.HasPrefix(cam.RTSPUrl, "rtsp://") {
				t.Errorf("Unexpected RTSP URL: %s", cam.RTSPUrl)
			}
			if cam.Brand == "" || cam.Model == "" {
				t.Errorf("Camera missing brand/model: %+v", cam)
			}
		}
	}
	if !found {
		t.Error("20 scans of a /24 produced no hits")
	}
}

func TestTestStreamRejectsBadScheme(t *testing.T) {
	s := NewCameraScannerSeeded(7)
	if ok, detail := s.TestStream("ftp://10.0.0.1/stream"); ok {
		t.Errorf("ftp scheme should fail, got ok with %q", detail)
	}
}
