package uri

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"http://127.0.0.1:5050/master/state",
		"http://[fe80::1ff:fe23:4567:890a]:5050/master/state",
		"https://mesos-master.example.com:5050/",
	}
	for _, s := range cases {
		u, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", s, err)
		}
		if got := u.String(); got != s {
			t.Errorf("round trip: Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseIPv6Bracketed(t *testing.T) {
	u, err := Parse("http://[::1]:5050/")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if u.Host == nil || *u.Host != "[::1]" {
		t.Errorf("Host = %v, want bracketed %q", u.Host, "[::1]")
	}
	if u.Port == nil || *u.Port != "5050" {
		t.Errorf("Port = %v, want %q", u.Port, "5050")
	}
}

func TestParseMissingScheme(t *testing.T) {
	if _, err := Parse("127.0.0.1:5050/master/state"); err == nil {
		t.Error("expected error for missing scheme")
	}
}

func TestParseMissingHost(t *testing.T) {
	u, err := Parse("http:///master/state")
	if err != nil {
		t.Fatalf("Parse returned error for an empty authority: %v", err)
	}
	if u.Host == nil || *u.Host != "" {
		t.Errorf("Host = %v, want present but empty", u.Host)
	}
}

func TestPortNumber(t *testing.T) {
	u, err := Parse("http://127.0.0.1:5050/")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	n, ok := u.PortNumber()
	if !ok || n != 5050 {
		t.Errorf("PortNumber() = (%d, %v), want (5050, true)", n, ok)
	}

	u2, err := Parse("http://127.0.0.1/")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := u2.PortNumber(); ok {
		t.Error("PortNumber() should report ok=false when no port is present")
	}
}
