package auth

import (
	"net/http/httptest"
	"testing"
)

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

func makeRequest(remoteAddr, forwardedFor, forwarded, userAgent string) string {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		r.Header.Set("X-Forwarded-For", forwardedFor)
	}
	if forwarded != "" {
		r.Header.Set("Forwarded", forwarded)
	}
	if userAgent != "" {
		r.Header.Set("User-Agent", userAgent)
	}
	return Fingerprint(r)
}

func TestFingerprintStable(t *testing.T) {
	a := makeRequest("10.0.0.1:1234", "", "", chromeUA)
	b := makeRequest("10.0.0.1:5678", "", "", chromeUA)

	if a == "" {
		t.Fatal("fingerprint is empty")
	}
	// the port must not influence the result
	if a != b {
		t.Errorf("fingerprints differ for the same device: %q vs %q", a, b)
	}
}

func TestFingerprintHeaderPriority(t *testing.T) {
	plain := makeRequest("10.0.0.1:1234", "", "", chromeUA)
	forwardedFor := makeRequest("10.0.0.1:1234", "203.0.113.7", "", chromeUA)
	forwarded := makeRequest("10.0.0.1:1234", "", "for=203.0.113.7", chromeUA)
	both := makeRequest("10.0.0.1:1234", "203.0.113.7", "for=198.51.100.1", chromeUA)

	if plain == forwardedFor || plain == forwarded || forwardedFor == forwarded {
		t.Error("different network contexts produced equal fingerprints")
	}
	// X-Forwarded-For wins over Forwarded
	if both != forwardedFor {
		t.Errorf("expected X-Forwarded-For to take priority: %q vs %q", both, forwardedFor)
	}
}

func TestFingerprintUserAgentChanges(t *testing.T) {
	a := makeRequest("10.0.0.1:1234", "", "", chromeUA)
	b := makeRequest("10.0.0.1:1234", "", "", "Mozilla/4.0 (Windows NT 10.0) Trident/7.0")

	if a == b {
		t.Error("different user agents produced equal fingerprints")
	}
}

func TestFingerprintUnparseableUserAgent(t *testing.T) {
	got := makeRequest("10.0.0.1:1234", "", "", "curl")
	if got == "" {
		t.Fatal("fingerprint is empty for unparseable user agent")
	}
	if got != `["10.0.0.1"]` {
		t.Errorf("unexpected fingerprint %q", got)
	}
}

func TestFingerprintNoUserAgent(t *testing.T) {
	got := makeRequest("10.0.0.1:1234", "", "", "")
	if got != `["10.0.0.1"]` {
		t.Errorf("unexpected fingerprint %q", got)
	}
}
