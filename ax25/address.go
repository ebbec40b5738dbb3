package ax25

import (
	"strconv"
	"strings"
)

// addressLen is the fixed width of one AX.25 address field.
const addressLen = 7

// Address is one AX.25 station address: a callsign and its SSID (0-15).
type Address struct {
	Call string
	SSID int
}

// String renders the address the way traffic logs and via-path lines
// do: CALL, or CALL-SSID when the SSID is non-zero.
func (a Address) String() string {
	if a.SSID == 0 {
		return a.Call
	}
	return a.Call + "-" + strconv.Itoa(a.SSID)
}

// decodeAddress unpacks one 7-byte AX.25 address field. It reports the
// resulting Address and whether bit 0 of the seventh byte (the
// address-extension flag) indicates more addresses follow: per AX.25,
// 0 means "more addresses follow" and 1 means "this was the last one".
func decodeAddress(raw [addressLen]byte, permissive bool) (addr Address, extensionFollows bool) {
	extensionFollows = raw[6]&0x01 == 0

	var shifted [addressLen]byte
	for i, b := range raw {
		shifted[i] = b >> 1
	}

	ssid := int(shifted[6] & 0x0F)

	// Trailing spaces pad short callsigns out to 6 characters; a
	// callsign with no padding simply keeps all 6.
	call := strings.TrimRight(string(shifted[:6]), " ")

	if permissive {
		runes := []rune(call)
		for i, r := range runes {
			if r < 0x20 || r > 0x7E {
				runes[i] = '?'
			}
		}
		call = string(runes)
	}

	return Address{Call: call, SSID: ssid}, extensionFollows
}
