package radio

import "fmt"

// Raw strength units: the receiver reports 0..65535 in half-dB steps with a
// -160 dBm offset, so dBm = raw/2 - 160.

// DBm converts a raw strength reading to dBm.
func DBm(rssi uint16) int {
	return int(rssi)/2 - 160
}

// FromDBm converts dBm back to raw strength units, clamped to 0..65534 so a
// conversion can never produce the sentinel value reserved by the scanner.
func FromDBm(dbm int) uint16 {
	v := (dbm + 160) * 2
	if v < 0 {
		return 0
	}
	if v > 0xFFFE {
		return 0xFFFE
	}
	return uint16(v)
}

// sThresholds are the lower dBm bounds of S1..S9 (6 dB per S-unit, S9 at
// -73 dBm), then S9+10 through S9+60.
var sThresholds = [...]int{-121, -115, -109, -103, -97, -91, -85, -79, -73,
	-63, -53, -43, -33, -23, -13}

// SMeter renders a dBm value as an S-meter label such as "S3" or "S9+20".
func SMeter(dbm int) string {
	s := 0
	for i, th := range sThresholds {
		if dbm >= th {
			s = i + 1
		}
	}
	if s <= 9 {
		return fmt.Sprintf("S%d", s)
	}
	return fmt.Sprintf("S9+%d", (s-9)*10)
}

func clamp(v, min, max int) int {
	if v <= min {
		return min
	}
	if v >= max {
		return max
	}
	return v
}

// ToPx maps a raw strength reading into [pxMin, pxMax] using the display dB
// window, rounding to the nearest pixel. Values are doubled internally to
// avoid truncating the window edges.
func ToPx(rssi uint16, dbMin, dbMax, pxMin, pxMax int) int {
	lo := dbMin << 1
	hi := dbMax << 1
	span := hi - lo
	if span <= 0 {
		return pxMin
	}
	dbm := clamp(DBm(rssi)<<1, lo, hi)
	return ((dbm-lo)*(pxMax-pxMin)+span/2)/span + pxMin
}

// ToY maps a raw strength reading to a display row, with row endY as the
// baseline and stronger signals closer to row 0.
func ToY(rssi uint16, dbMin, dbMax, endY int) int {
	return endY - ToPx(rssi, dbMin, dbMax, 0, endY)
}

// DitherLevel maps a raw strength reading into a 0..15 intensity for the
// waterfall's ordered dithering, using the same dB window as the spectrum.
func DitherLevel(rssi uint16, dbMin, dbMax int) int {
	if dbMax <= dbMin {
		dbMax = dbMin + 1
	}
	lev := (DBm(rssi) - dbMin) * 15 / (dbMax - dbMin + 1)
	return clamp(lev, 0, 15)
}
