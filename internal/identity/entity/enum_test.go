package entity

import "testing"

func TestUserStatus(t *testing.T) {
	tests := []struct {
		in     UserStatus
		ensure UserStatus
		str    string
	}{
		{in: UserStatusUnverified, ensure: UserStatusUnverified, str: "Unverified"},
		{in: UserStatusActive, ensure: UserStatusActive, str: "Active"},
		{in: UserStatus(9), ensure: UserStatusUnknown, str: "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.in.Ensure(); got != tt.ensure {
			t.Fatalf("%d.Ensure() = %d, want %d", tt.in, got, tt.ensure)
		}
		if got := tt.in.String(); got != tt.str {
			t.Fatalf("%d.String() = %q, want %q", tt.in, got, tt.str)
		}
	}
}
