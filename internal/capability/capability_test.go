package capability

import "testing"

func TestMatchHost(t *testing.T) {
	allowlist := []string{"api.example.com", "*.infura.io"}

	tests := []struct {
		host string
		want bool
	}{
		{"api.example.com", true},
		{"API.Example.COM", true},
		{"mainnet.infura.io", true},
		{"a.b.infura.io", true},
		{"infura.io", false},
		{"example.com", false},
		{"evil-api.example.com.attacker.net", false},
	}

	for _, tt := range tests {
		if got := MatchHost(allowlist, tt.host); got != tt.want {
			t.Errorf("MatchHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		allowlist []string
		path      string
		want      bool
	}{
		{[]string{"**"}, "/anything/at/all", true},
		{[]string{"data/**"}, "data/cache/x.json", true},
		{[]string{"data/**"}, "data", true},
		{[]string{"data/**"}, "database/x", false},
		{[]string{"./data/**"}, "data/x", true},
		{[]string{"config/*.json"}, "config/app.json", true},
		{[]string{"config/*.json"}, "config/sub/app.json", false},
		{[]string{"config/*.json"}, "config/app.yaml", false},
		{[]string{"/project/src"}, "/project/src/main.go", true},
		{[]string{"/project/src"}, "/project/srcx/main.go", false},
	}

	for _, tt := range tests {
		if got := MatchPath(tt.allowlist, tt.path); got != tt.want {
			t.Errorf("MatchPath(%v, %q) = %v, want %v", tt.allowlist, tt.path, got, tt.want)
		}
	}
}

func TestMatchSecret(t *testing.T) {
	allowlist := []string{"STRIPE_*", "DATABASE_URL"}

	tests := []struct {
		name string
		want bool
	}{
		{"DATABASE_URL", true},
		{"STRIPE_SECRET_KEY", true},
		{"STRIPE_", true},
		{"GITHUB_TOKEN", false},
	}

	for _, tt := range tests {
		if got := MatchSecret(allowlist, tt.name); got != tt.want {
			t.Errorf("MatchSecret(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"none", "read_only", "trading_bot", "defi"} {
		if _, ok := Preset(name); !ok {
			t.Errorf("preset %s missing", name)
		}
	}
	if _, ok := Preset("admin"); ok {
		t.Error("unknown preset should not resolve")
	}

	none := None()
	if none.Exec != ExecDeny {
		t.Error("none preset must deny exec")
	}
	view := none.View()
	if view.CanExec || view.CanNetwork || view.CanWrite || view.CanRead || view.CanWeb3 {
		t.Errorf("none preset view should permit nothing: %+v", view)
	}
}

func TestViewAllows(t *testing.T) {
	ro := ReadOnlyView()
	if !ro.Allows("read_file") {
		t.Error("read-only view must allow reads")
	}
	for _, at := range []string{"exec_command", "network_request", "write_file", "web3_tx", "secret_access"} {
		if ro.Allows(at) {
			t.Errorf("read-only view must not allow %s", at)
		}
	}

	trading, _ := Preset("trading_bot")
	view := trading.View()
	if !view.CanNetwork || !view.CanWeb3 {
		t.Errorf("trading_bot view = %+v", view)
	}
	if view.CanExec {
		t.Error("trading_bot must not exec")
	}
}
