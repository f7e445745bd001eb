package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"regexp"
)

// agentRe splits a User-Agent of the shape "name/version (detail) extra"
// into its parts. Anything else contributes no extra fields.
var agentRe = regexp.MustCompile(`^(\w*)/([\d.]*)\s*(\((.*?)\)\s*(.*))?$`)

// Fingerprint derives a stable device signature from the request's
// network context and User-Agent. It is captured once at session
// creation; a later mismatch marks the session as stolen or stale.
// The result is a compact JSON array so it is byte-reproducible.
func Fingerprint(r *http.Request) string {
	var info []string
	switch {
	case r.Header.Get("X-Forwarded-For") != "":
		info = append(info, r.Header.Get("X-Forwarded-For"))
	case r.Header.Get("Forwarded") != "":
		info = append(info, r.Header.Get("Forwarded"))
	default:
		info = append(info, remoteIP(r))
	}

	if m := agentRe.FindStringSubmatch(r.UserAgent()); m != nil {
		info = append(info, m[1:]...)
	}

	b, _ := json.Marshal(info)
	return string(b)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
