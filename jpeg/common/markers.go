package common

import "fmt"

// JPEG marker constants
const (
	// Start of Image
	MarkerSOI = 0xFFD8

	// End of Image
	MarkerEOI = 0xFFD9

	// Start of Frame markers
	MarkerSOF0  = 0xFFC0 // Baseline DCT
	MarkerSOF1  = 0xFFC1 // Extended Sequential DCT
	MarkerSOF2  = 0xFFC2 // Progressive DCT
	MarkerSOF3  = 0xFFC3 // Lossless (Sequential)
	MarkerSOF5  = 0xFFC5 // Differential Sequential DCT
	MarkerSOF6  = 0xFFC6 // Differential Progressive DCT
	MarkerSOF7  = 0xFFC7 // Differential Lossless
	MarkerSOF9  = 0xFFC9 // Extended Sequential DCT, Arithmetic coding
	MarkerSOF10 = 0xFFCA // Progressive DCT, Arithmetic coding
	MarkerSOF11 = 0xFFCB // Lossless, Arithmetic coding
	MarkerSOF13 = 0xFFCD // Differential Sequential DCT, Arithmetic coding
	MarkerSOF14 = 0xFFCE // Differential Progressive DCT, Arithmetic coding
	MarkerSOF15 = 0xFFCF // Differential Lossless, Arithmetic coding

	MarkerDHT = 0xFFC4 // Define Huffman Table
	MarkerJPG = 0xFFC8 // Reserved for JPEG extensions
	MarkerDAC = 0xFFCC // Define Arithmetic Conditioning
	MarkerDQT = 0xFFDB // Define Quantization Table
	MarkerDNL = 0xFFDC // Define Number of Lines
	MarkerDRI = 0xFFDD // Define Restart Interval
	MarkerSOS = 0xFFDA // Start of Scan
	MarkerTEM = 0xFF01 // Temporary use in arithmetic coding

	// Application segments
	MarkerAPP0  = 0xFFE0 // JFIF
	MarkerAPP1  = 0xFFE1 // Exif / XMP
	MarkerAPP2  = 0xFFE2 // ICC profile
	MarkerAPP14 = 0xFFEE // Adobe
	MarkerAPP15 = 0xFFEF

	// Comment
	MarkerCOM = 0xFFFE

	// Restart markers
	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsSOF returns true if the marker is a Start of Frame marker
func IsSOF(marker uint16) bool {
	return (marker >= MarkerSOF0 && marker <= MarkerSOF3) ||
		(marker >= MarkerSOF5 && marker <= MarkerSOF7) ||
		(marker >= MarkerSOF9 && marker <= MarkerSOF11) ||
		(marker >= MarkerSOF13 && marker <= MarkerSOF15)
}

// IsSequentialHuffman reports whether a SOF marker describes a frame this
// package can decode: 8-bit sequential DCT with Huffman coding.
func IsSequentialHuffman(marker uint16) bool {
	return marker == MarkerSOF0 || marker == MarkerSOF1
}

// IsRST returns true if the marker is a Restart marker
func IsRST(marker uint16) bool {
	return marker >= MarkerRST0 && marker <= MarkerRST7
}

// IsAPP returns true for APP0..APP15
func IsAPP(marker uint16) bool {
	return marker >= MarkerAPP0 && marker <= MarkerAPP15
}

// HasLength returns true if the marker is followed by a length field
func HasLength(marker uint16) bool {
	if marker == MarkerSOI || marker == MarkerEOI || marker == MarkerTEM {
		return false
	}
	return !IsRST(marker)
}

// MarkerName returns a short mnemonic such as "SOF0" or "APP14".
func MarkerName(marker uint16) string {
	switch {
	case marker == MarkerSOI:
		return "SOI"
	case marker == MarkerEOI:
		return "EOI"
	case marker == MarkerDHT:
		return "DHT"
	case marker == MarkerDAC:
		return "DAC"
	case marker == MarkerJPG:
		return "JPG"
	case IsSOF(marker):
		return fmt.Sprintf("SOF%d", marker-MarkerSOF0)
	case marker == MarkerDQT:
		return "DQT"
	case marker == MarkerDNL:
		return "DNL"
	case marker == MarkerDRI:
		return "DRI"
	case marker == MarkerSOS:
		return "SOS"
	case marker == MarkerCOM:
		return "COM"
	case marker == MarkerTEM:
		return "TEM"
	case IsRST(marker):
		return fmt.Sprintf("RST%d", marker-MarkerRST0)
	case IsAPP(marker):
		return fmt.Sprintf("APP%d", marker-MarkerAPP0)
	}
	return fmt.Sprintf("0x%04X", marker)
}
