package common

// JFIF colour conversion in 16.16 fixed point (ITU-R BT.601 full range)

// RGBToYCbCr converts one RGB sample to YCbCr.
func RGBToYCbCr(r, g, b byte) (y, cb, cr byte) {
	r1, g1, b1 := int32(r), int32(g), int32(b)
	yy := (19595*r1 + 38470*g1 + 7471*b1 + 1<<15) >> 16
	cbb := (-11056*r1 - 21712*g1 + 32768*b1 + 128<<16 + 1<<15) >> 16
	crr := (32768*r1 - 27440*g1 - 5328*b1 + 128<<16 + 1<<15) >> 16
	return clampByte(yy), clampByte(cbb), clampByte(crr)
}

// YCbCrToRGB converts one YCbCr sample to RGB.
func YCbCrToRGB(y, cb, cr byte) (r, g, b byte) {
	y1 := int32(y)<<16 + 1<<15
	cb1 := int32(cb) - 128
	cr1 := int32(cr) - 128
	return clampByte((y1 + 91881*cr1) >> 16),
		clampByte((y1 - 22554*cb1 - 46802*cr1) >> 16),
		clampByte((y1 + 116130*cb1) >> 16)
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
