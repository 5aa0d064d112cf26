package common

import (
	"errors"
	"fmt"
)

// Code identifies the outcome of a codec call. Non-zero values are the
// libjpeg message codes for the corresponding failures, so diagnostics line
// up with what libjpeg based tooling reports for the same stream.
type Code int

// Codec status codes
const (
	CodeUnknown           Code = -1 // unexpected internal failure
	CodeOK                Code = 0
	CodeBadComponentID    Code = 4
	CodeBadDCTCoef        Code = 6
	CodeBadHuffTable      Code = 9
	CodeBadLength         Code = 12
	CodeBadPrecision      Code = 16
	CodeBadSampling       Code = 19
	CodeBufferSize        Code = 24
	CodeComponentCount    Code = 27
	CodeConversionNotImpl Code = 28
	CodeDHTIndex          Code = 31
	CodeDQTIndex          Code = 32
	CodeEmptyImage        Code = 33
	CodeHuffMissingCode   Code = 41
	CodeImageTooBig       Code = 42
	CodeInputEmpty        Code = 43
	CodeInputEOF          Code = 44
	CodeNoHuffTable       Code = 52
	CodeNoImage           Code = 53
	CodeNoQuantTable      Code = 54
	CodeNoSOI             Code = 55
	CodeOutOfMemory       Code = 56
	CodeSOFDuplicate      Code = 60
	CodeSOFNoSOS          Code = 61
	CodeSOFUnsupported    Code = 62
	CodeSOIDuplicate      Code = 63
	CodeSOSNoSOF          Code = 64
)

type codeInfo struct {
	name     string
	template string
}

var codeTable = map[Code]codeInfo{
	CodeUnknown:           {"UNKNOWN", "internal codec failure"},
	CodeOK:                {"OK", ""},
	CodeBadComponentID:    {"BAD_COMPONENT_ID", "Invalid component ID %d in SOS"},
	CodeBadDCTCoef:        {"BAD_DCT_COEF", "DCT coefficient out of range"},
	CodeBadHuffTable:      {"BAD_HUFF_TABLE", "Bogus Huffman table definition"},
	CodeBadLength:         {"BAD_LENGTH", "Bogus marker length"},
	CodeBadPrecision:      {"BAD_PRECISION", "Unsupported JPEG data precision %d"},
	CodeBadSampling:       {"BAD_SAMPLING", "Bogus sampling factors"},
	CodeBufferSize:        {"BUFFER_SIZE", "Buffer passed to JPEG library is too small"},
	CodeComponentCount:    {"COMPONENT_COUNT", "Too many color components: %d, max %d"},
	CodeConversionNotImpl: {"CONVERSION_NOTIMPL", "Unsupported color conversion request"},
	CodeDHTIndex:          {"DHT_INDEX", "Bogus DHT index %d"},
	CodeDQTIndex:          {"DQT_INDEX", "Bogus DQT index %d"},
	CodeEmptyImage:        {"EMPTY_IMAGE", "Empty JPEG image (DNL not supported)"},
	CodeHuffMissingCode:   {"HUFF_MISSING_CODE", "Missing Huffman code table entry"},
	CodeImageTooBig:       {"IMAGE_TOO_BIG", "Maximum supported image dimension is %d pixels"},
	CodeInputEmpty:        {"INPUT_EMPTY", "Empty input file"},
	CodeInputEOF:          {"INPUT_EOF", "Premature end of input file"},
	CodeNoHuffTable:       {"NO_HUFF_TABLE", "Huffman table 0x%02x was not defined"},
	CodeNoImage:           {"NO_IMAGE", "JPEG datastream contains no image"},
	CodeNoQuantTable:      {"NO_QUANT_TABLE", "Quantization table 0x%02x was not defined"},
	CodeNoSOI:             {"NO_SOI", "Not a JPEG file: starts with 0x%02x 0x%02x"},
	CodeOutOfMemory:       {"OUT_OF_MEMORY", "Insufficient memory (case %d)"},
	CodeSOFDuplicate:      {"SOF_DUPLICATE", "Invalid JPEG file structure: two SOF markers"},
	CodeSOFNoSOS:          {"SOF_NO_SOS", "Invalid JPEG file structure: missing SOS marker"},
	CodeSOFUnsupported:    {"SOF_UNSUPPORTED", "Unsupported JPEG process: SOF type 0x%02x"},
	CodeSOIDuplicate:      {"SOI_DUPLICATE", "Invalid JPEG file structure: two SOI markers"},
	CodeSOSNoSOF:          {"SOS_NO_SOF", "Invalid JPEG file structure: SOS before SOF"},
}

// Codes returns every defined code in ascending order.
func Codes() []Code {
	return []Code{
		CodeUnknown, CodeOK,
		CodeBadComponentID, CodeBadDCTCoef, CodeBadHuffTable, CodeBadLength,
		CodeBadPrecision, CodeBadSampling, CodeBufferSize, CodeComponentCount,
		CodeConversionNotImpl, CodeDHTIndex, CodeDQTIndex, CodeEmptyImage,
		CodeHuffMissingCode, CodeImageTooBig, CodeInputEmpty, CodeInputEOF,
		CodeNoHuffTable, CodeNoImage, CodeNoQuantTable, CodeNoSOI,
		CodeOutOfMemory, CodeSOFDuplicate, CodeSOFNoSOS, CodeSOFUnsupported,
		CodeSOIDuplicate, CodeSOSNoSOF,
	}
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if info, ok := codeTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Template returns the message template of the code, with printf verbs for
// its arguments.
func (c Code) Template() string {
	if info, ok := codeTable[c]; ok {
		return info.template
	}
	return "Bogus message code %d"
}

// Known reports whether c is a defined code.
func (c Code) Known() bool {
	_, ok := codeTable[c]
	return ok
}

// Error is a codec failure tagged with its status code.
type Error struct {
	Code    Code
	Message string
}

// Errorf builds an Error whose message is the code's template filled with
// args.
func Errorf(code Code, args ...interface{}) *Error {
	tmpl := code.Template()
	msg := tmpl
	if len(args) > 0 {
		msg = fmt.Sprintf(tmpl, args...)
	} else if !code.Known() {
		msg = fmt.Sprintf(tmpl, int(code))
	}
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code, so sentinels compare equal
// to errors with filled-in message arguments.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the status code carried by err. A nil error is CodeOK;
// errors that carry no code are CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Sentinel errors, one per failure code
var (
	ErrBadComponentID    = sentinel(CodeBadComponentID)
	ErrBadDCTCoef        = sentinel(CodeBadDCTCoef)
	ErrBadHuffTable      = sentinel(CodeBadHuffTable)
	ErrBadLength         = sentinel(CodeBadLength)
	ErrBadPrecision      = sentinel(CodeBadPrecision)
	ErrBadSampling       = sentinel(CodeBadSampling)
	ErrBufferSize        = sentinel(CodeBufferSize)
	ErrComponentCount    = sentinel(CodeComponentCount)
	ErrConversionNotImpl = sentinel(CodeConversionNotImpl)
	ErrDHTIndex          = sentinel(CodeDHTIndex)
	ErrDQTIndex          = sentinel(CodeDQTIndex)
	ErrEmptyImage        = sentinel(CodeEmptyImage)
	ErrHuffMissingCode   = sentinel(CodeHuffMissingCode)
	ErrImageTooBig       = sentinel(CodeImageTooBig)
	ErrInputEmpty        = sentinel(CodeInputEmpty)
	ErrInputEOF          = sentinel(CodeInputEOF)
	ErrNoHuffTable       = sentinel(CodeNoHuffTable)
	ErrNoImage           = sentinel(CodeNoImage)
	ErrNoQuantTable      = sentinel(CodeNoQuantTable)
	ErrNoSOI             = sentinel(CodeNoSOI)
	ErrOutOfMemory       = sentinel(CodeOutOfMemory)
	ErrSOFDuplicate      = sentinel(CodeSOFDuplicate)
	ErrSOFNoSOS          = sentinel(CodeSOFNoSOS)
	ErrSOFUnsupported    = sentinel(CodeSOFUnsupported)
	ErrSOIDuplicate      = sentinel(CodeSOIDuplicate)
	ErrSOSNoSOF          = sentinel(CodeSOSNoSOF)
	ErrUnknown           = sentinel(CodeUnknown)
)

func sentinel(code Code) *Error {
	return &Error{Code: code, Message: code.Template()}
}
