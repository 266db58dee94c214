// Package ua parses raw User-Agent strings into the structured client
// signature stored on scan events. Parsing is pure and total: it performs
// no I/O and cannot fail, it only leaves fields empty.
package ua

import (
	"strings"

	"github.com/mileusna/useragent"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
)

// Device type values persisted on scan events.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// vendorByModel maps well-known device model substrings to vendors. The
// underlying parser reports models but not vendors, so this covers the
// common cases; anything else stays empty.
var vendorByModel = map[string]string{
	"iphone":      "Apple",
	"ipad":        "Apple",
	"macintosh":   "Apple",
	"samsung":     "Samsung",
	"huawei":      "Huawei",
	"pixel":       "Google",
	"xiaomi":      "Xiaomi",
	"oneplus":     "OnePlus",
	"kindle":      "Amazon",
	"playstation": "Sony",
}

// Parse converts a raw User-Agent string into a ClientSignature. An empty
// input yields nil: the signature is absent as a whole, not a struct of
// placeholders. Fields the heuristics cannot determine stay empty.
func Parse(raw string) *domain.ClientSignature {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parsed := useragent.Parse(raw)

	return &domain.ClientSignature{
		BrowserName:    parsed.Name,
		BrowserVersion: parsed.Version,
		OSName:         parsed.OS,
		OSVersion:      parsed.OSVersion,
		DeviceType:     deviceType(parsed),
		DeviceVendor:   vendor(parsed.Device),
		DeviceModel:    parsed.Device,
	}
}

func deviceType(parsed useragent.UserAgent) string {
	switch {
	case parsed.Bot:
		return DeviceBot
	case parsed.Tablet:
		return DeviceTablet
	case parsed.Mobile:
		return DeviceMobile
	case parsed.Desktop:
		return DeviceDesktop
	default:
		return ""
	}
}

func vendor(model string) string {
	if model == "" {
		return ""
	}

	lower := strings.ToLower(model)
	for substr, v := range vendorByModel {
		if strings.Contains(lower, substr) {
			return v
		}
	}
	return ""
}
