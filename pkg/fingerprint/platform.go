package fingerprint

import "strings"

// Fingerprint attribute names used by the post-processing stage: the platform
// it reads, and the fields it derives from it when the sampled model slice
// omits them.
const (
	fieldPlatform          = "platform"
	fieldBattery           = "battery"
	fieldFonts             = "fonts"
	fieldMultimediaDevices = "multimediaDevices"
)

// platformProfile carries the per-OS-family fallback attributes.
type platformProfile struct {
	fonts            []string
	speakers         int
	micros           int
	webcams          int
	batteryCharging  bool
	batterySupported bool
}

var platformProfiles = map[string]platformProfile{
	"windows": {
		fonts: []string{
			"Arial", "Calibri", "Cambria", "Consolas", "Courier New",
			"Georgia", "Segoe UI", "Tahoma", "Times New Roman", "Verdana",
		},
		speakers: 1, micros: 1, webcams: 1,
		batteryCharging: true, batterySupported: true,
	},
	"macos": {
		fonts: []string{
			"Arial", "Avenir", "Courier New", "Geneva", "Georgia",
			"Helvetica", "Helvetica Neue", "Monaco", "Times New Roman", "Verdana",
		},
		speakers: 1, micros: 1, webcams: 1,
		batteryCharging: true, batterySupported: true,
	},
	"linux": {
		fonts: []string{
			"Cantarell", "DejaVu Sans", "DejaVu Serif", "Liberation Mono",
			"Liberation Sans", "Liberation Serif", "Ubuntu",
		},
		speakers: 1, micros: 1, webcams: 0,
		batterySupported: false,
	},
	"android": {
		fonts:    []string{"Droid Sans", "Noto Sans", "Roboto"},
		speakers: 1, micros: 1, webcams: 2,
		batteryCharging: false, batterySupported: true,
	},
	"ios": {
		fonts:    []string{"Arial", "Courier New", "Georgia", "Helvetica", "Helvetica Neue", "San Francisco"},
		speakers: 1, micros: 1, webcams: 2,
		batteryCharging: false, batterySupported: true,
	},
}

// platformFamily buckets a navigator.platform string into an OS family.
func platformFamily(platform string) string {
	p := strings.ToLower(platform)
	switch {
	case strings.Contains(p, "win"):
		return "windows"
	case strings.Contains(p, "iphone"), strings.Contains(p, "ipad"), strings.Contains(p, "ipod"):
		return "ios"
	case strings.Contains(p, "mac"):
		return "macos"
	case strings.Contains(p, "android"), strings.Contains(p, "armv"), strings.Contains(p, "aarch64"):
		return "android"
	case strings.Contains(p, "linux"), strings.Contains(p, "x11"):
		return "linux"
	}
	return ""
}

// deriveMissing fills battery, multimedia-device, and font attributes from
// the platform profile when the sampled slice left them out.
func deriveMissing(fp Fingerprint) {
	platform, _ := fp[fieldPlatform].(string)
	profile, known := platformProfiles[platformFamily(platform)]
	if !known {
		return
	}

	if _, present := fp[fieldFonts]; !present {
		fonts := make([]interface{}, len(profile.fonts))
		for i, f := range profile.fonts {
			fonts[i] = f
		}
		fp[fieldFonts] = fonts
	}

	if _, present := fp[fieldMultimediaDevices]; !present {
		fp[fieldMultimediaDevices] = map[string]interface{}{
			"speakers": profile.speakers,
			"micros":   profile.micros,
			"webcams":  profile.webcams,
		}
	}

	if _, present := fp[fieldBattery]; !present {
		if profile.batterySupported {
			fp[fieldBattery] = map[string]interface{}{
				"charging":        profile.batteryCharging,
				"chargingTime":    nil,
				"dischargingTime": nil,
			}
		} else {
			fp[fieldBattery] = nil
		}
	}
}
