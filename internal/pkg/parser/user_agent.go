package parser

import "strings"

// Device classes reported in usage snapshots.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

var tabletPatterns = []string{"ipad", "tablet", "kindle", "silk", "playbook"}

var mobilePatterns = []string{"mobi", "android", "iphone", "ipod", "windows phone", "opera mini"}

var desktopPatterns = []string{"windows", "macintosh", "x11", "linux", "cros"}

// DeviceClass classifies a user agent into mobile/desktop/tablet/unknown.
// Tablet patterns are checked first: tablet user agents usually also match
// the generic mobile patterns.
func DeviceClass(ua string) string {
	if ua == "" {
		return DeviceUnknown
	}
	uaLower := strings.ToLower(ua)

	for _, p := range tabletPatterns {
		if strings.Contains(uaLower, p) {
			return DeviceTablet
		}
	}
	for _, p := range mobilePatterns {
		if strings.Contains(uaLower, p) {
			return DeviceMobile
		}
	}
	for _, p := range desktopPatterns {
		if strings.Contains(uaLower, p) {
			return DeviceDesktop
		}
	}
	return DeviceUnknown
}

func ParseUserAgent(ua string) (os, browser string) {
	uaLower := strings.ToLower(ua)

	// OS Detection
	if strings.Contains(uaLower, "windows") {
		os = "Windows"
	} else if strings.Contains(uaLower, "mac os") {
		os = "macOS"
	} else if strings.Contains(uaLower, "android") {
		os = "Android"
	} else if strings.Contains(uaLower, "iphone") || strings.Contains(uaLower, "ipad") {
		os = "iOS"
	} else if strings.Contains(uaLower, "linux") {
		os = "Linux"
	} else {
		os = "Unknown"
	}

	// Browser Detection
	if strings.Contains(uaLower, "edge") {
		browser = "Edge"
	} else if strings.Contains(uaLower, "chrome") {
		browser = "Chrome"
	} else if strings.Contains(uaLower, "safari") {
		browser = "Safari"
	} else if strings.Contains(uaLower, "firefox") {
		browser = "Firefox"
	} else {
		browser = "Unknown"
	}

	return os, browser
}
