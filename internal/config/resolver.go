package config

import (
	"fmt"
	"strings"
)

const (
	// localAPIBase is the development backend, also the fallback when no
	// host context is available (server-side rendering, tests).
	localAPIBase = "http://localhost:3001"

	// productionAPIBase is the fixed backend for known production hosts.
	productionAPIBase = "https://api.grandson-project.com"

	// LAN access ports: the backend listens on a different port depending
	// on whether the mobile or the desktop build is being served.
	mobileAPIPort  = 3000
	desktopAPIPort = 3001
)

// productionHostMarkers are substrings identifying production hostnames.
var productionHostMarkers = []string{
	"grandson-project.com",
	"grandsonproject.com",
	"vercel.app",
}

// mobileAgentMarkers are user-agent substrings identifying mobile devices.
var mobileAgentMarkers = []string{
	"Android",
	"iPhone",
	"iPad",
	"iPod",
	"BlackBerry",
	"Opera Mini",
	"IEMobile",
	"Mobile",
}

// Environment is the execution context endpoint resolution depends on.
// ResolveAPIBase is a pure function of its fields; nothing is cached, so
// a changed hostname between calls (tests, embedded contexts) is picked up.
type Environment struct {
	BaseURLOverride string
	Hostname        string
	UserAgent       string
}

// ResolveAPIBase determines the backend base URL.
//
// An explicit override always wins. Without one, the current hostname
// decides: localhost stays on the local backend, known production hosts
// map to the fixed production backend, and any other host (LAN or raw IP
// access) gets http://{hostname}:{port} where the port follows the
// mobile-vs-desktop heuristic. Without any host context the local
// default is returned; this never fails.
func (e Environment) ResolveAPIBase() string {
	if e.BaseURLOverride != "" {
		return e.BaseURLOverride
	}

	host := strings.TrimSpace(e.Hostname)
	if host == "" {
		return localAPIBase
	}

	if host == "localhost" || host == "127.0.0.1" {
		return localAPIBase
	}

	for _, marker := range productionHostMarkers {
		if strings.Contains(host, marker) {
			return productionAPIBase
		}
	}

	port := desktopAPIPort
	if IsMobileUserAgent(e.UserAgent) {
		port = mobileAPIPort
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// IsMobileUserAgent reports whether the user agent identifies a mobile
// device.
func IsMobileUserAgent(userAgent string) bool {
	for _, marker := range mobileAgentMarkers {
		if strings.Contains(userAgent, marker) {
			return true
		}
	}
	return false
}
