package services

import "strings"

// DeviceInfo is the parsed browser/OS/device signature recorded with every
// login attempt and used for new-device detection.
type DeviceInfo struct {
	Browser string
	OS      string
	Device  string
}

// ParseUserAgent classifies the common browser and OS families from a raw
// User-Agent header. It is intentionally coarse: the signature only has to be
// stable per device, not forensically precise.
func ParseUserAgent(ua string) DeviceInfo {
	info := DeviceInfo{Browser: "Unknown", OS: "Unknown", Device: "desktop"}
	if ua == "" {
		return info
	}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "edg/"):
		info.Browser = "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		info.Browser = "Opera"
	case strings.Contains(lower, "chrome/"):
		info.Browser = "Chrome"
	case strings.Contains(lower, "firefox/"):
		info.Browser = "Firefox"
	case strings.Contains(lower, "safari/"):
		info.Browser = "Safari"
	case strings.Contains(lower, "curl/"):
		info.Browser = "curl"
	}

	switch {
	case strings.Contains(lower, "android"):
		info.OS = "Android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad"):
		info.OS = "iOS"
	case strings.Contains(lower, "windows"):
		info.OS = "Windows"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(lower, "linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		info.Device = "tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		info.Device = "mobile"
	}

	return info
}

// GeoResolver maps a client IP to a human-readable location label for the
// login history. Implementations may consult a local GeoIP database; the
// default resolver has none and labels everything Unknown.
type GeoResolver interface {
	Lookup(ip string) string
}

type staticGeoResolver struct{}

func NewStaticGeoResolver() GeoResolver {
	return staticGeoResolver{}
}

func (staticGeoResolver) Lookup(ip string) string {
	return "Unknown"
}
