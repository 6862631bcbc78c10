package jellyfin

import "testing"

func TestCheckMinimumVersion(t *testing.T) {
	tests := []struct {
		reported string
		minimum  string
		wantErr  bool
	}{
		{"10.9.2", "10.8.0", false},
		{"10.8.0", "10.8.0", false},
		{"10.7.7", "10.8.0", true},
		{"", "10.8.0", false},        // proxies may strip the version
		{"unstable", "10.8.0", false}, // non-semver strings are tolerated
		{"10.9.2", "", false},
	}
	for _, tt := range tests {
		err := CheckMinimumVersion(tt.reported, tt.minimum)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckMinimumVersion(%q, %q): got err=%v, wantErr=%v", tt.reported, tt.minimum, err, tt.wantErr)
		}
	}
}
