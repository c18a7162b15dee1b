package cmd

import (
	"strings"
	"testing"
)

func TestParseCameraFile(t *testing.T) {
	input := `
cameras:
  - name: Main gate
    ip_address: 10.0.0.20
    location: North entrance
  - name: " Lobby "
    ip_address: 10.0.0.21
`
	cameras, err := parseCameraFile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(cameras))
	}
	if cameras[0].Name != "Main gate" || cameras[0].Location != "North entrance" {
		t.Errorf("unexpected first camera %+v", cameras[0])
	}
	if cameras[1].Name != "Lobby" || cameras[1].Location != "" {
		t.Errorf("unexpected second camera %+v", cameras[1])
	}
}

func TestParseCameraFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "empty"},
		{"missing name", "cameras:\n  - ip_address: 10.0.0.1\n", "name is required"},
		{"missing ip", "cameras:\n  - name: Gate\n", "ip_address is required"},
		{"name too long", "cameras:\n  - name: " + strings.Repeat("x", 51) + "\n    ip_address: 10.0.0.1\n", "name is longer"},
		{"unknown field", "cameras:\n  - name: Gate\n    ip_address: 10.0.0.1\n    rtsp: x\n", "rtsp"},
		{"not yaml", "cameras: [", "parsing camera file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCameraFile(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Name"}, [][]string{{"1", "Gate"}, {"2"}}, []columnAlignment{alignRight})
	for _, want := range []string{"ID", "NAME", "Gate"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}
