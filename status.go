package jpegasm

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-jpegasm/jpeg/common"
)

// Status is the outcome of an encode or decode call. Zero is success; every
// failure category has its own stable value, taken from the libjpeg message
// table.
type Status = common.Code

// Status values
const (
	StatusUnknown           = common.CodeUnknown
	StatusOK                = common.CodeOK
	StatusBadComponentID    = common.CodeBadComponentID
	StatusBadDCTCoef        = common.CodeBadDCTCoef
	StatusBadHuffTable      = common.CodeBadHuffTable
	StatusBadLength         = common.CodeBadLength
	StatusBadPrecision      = common.CodeBadPrecision
	StatusBadSampling       = common.CodeBadSampling
	StatusBufferSize        = common.CodeBufferSize
	StatusComponentCount    = common.CodeComponentCount
	StatusConversionNotImpl = common.CodeConversionNotImpl
	StatusDHTIndex          = common.CodeDHTIndex
	StatusDQTIndex          = common.CodeDQTIndex
	StatusEmptyImage        = common.CodeEmptyImage
	StatusHuffMissingCode   = common.CodeHuffMissingCode
	StatusImageTooBig       = common.CodeImageTooBig
	StatusInputEmpty        = common.CodeInputEmpty
	StatusInputEOF          = common.CodeInputEOF
	StatusNoHuffTable       = common.CodeNoHuffTable
	StatusNoImage           = common.CodeNoImage
	StatusNoQuantTable      = common.CodeNoQuantTable
	StatusNoSOI             = common.CodeNoSOI
	StatusOutOfMemory       = common.CodeOutOfMemory
	StatusSOFDuplicate      = common.CodeSOFDuplicate
	StatusSOFNoSOS          = common.CodeSOFNoSOS
	StatusSOFUnsupported    = common.CodeSOFUnsupported
	StatusSOIDuplicate      = common.CodeSOIDuplicate
	StatusSOSNoSOF          = common.CodeSOSNoSOF
)

// Statuses returns every defined status in ascending order.
func Statuses() []Status {
	return common.Codes()
}

// Error is the failure half of every call: a status and its diagnostic
// message. Functions in this package return either a result and a nil
// error, or a nil result and an *Error.
type Error struct {
	Status  Status
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors carrying the same status, so
// errors.Is(err, ErrNoSOI) holds whatever the message arguments were.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return t.Status == e.Status
	case *common.Error:
		return t.Code == e.Status
	}
	return false
}

// StatusOf returns StatusOK for nil, the status carried by err, or
// StatusUnknown for errors from outside this module.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return common.CodeOf(err)
}

// Sentinel errors, one per failure status
var (
	ErrUnknown           = sentinel(StatusUnknown)
	ErrBadComponentID    = sentinel(StatusBadComponentID)
	ErrBadDCTCoef        = sentinel(StatusBadDCTCoef)
	ErrBadHuffTable      = sentinel(StatusBadHuffTable)
	ErrBadLength         = sentinel(StatusBadLength)
	ErrBadPrecision      = sentinel(StatusBadPrecision)
	ErrBadSampling       = sentinel(StatusBadSampling)
	ErrBufferSize        = sentinel(StatusBufferSize)
	ErrComponentCount    = sentinel(StatusComponentCount)
	ErrConversionNotImpl = sentinel(StatusConversionNotImpl)
	ErrDHTIndex          = sentinel(StatusDHTIndex)
	ErrDQTIndex          = sentinel(StatusDQTIndex)
	ErrEmptyImage        = sentinel(StatusEmptyImage)
	ErrHuffMissingCode   = sentinel(StatusHuffMissingCode)
	ErrImageTooBig       = sentinel(StatusImageTooBig)
	ErrInputEmpty        = sentinel(StatusInputEmpty)
	ErrInputEOF          = sentinel(StatusInputEOF)
	ErrNoHuffTable       = sentinel(StatusNoHuffTable)
	ErrNoImage           = sentinel(StatusNoImage)
	ErrNoQuantTable      = sentinel(StatusNoQuantTable)
	ErrNoSOI             = sentinel(StatusNoSOI)
	ErrOutOfMemory       = sentinel(StatusOutOfMemory)
	ErrSOFDuplicate      = sentinel(StatusSOFDuplicate)
	ErrSOFNoSOS          = sentinel(StatusSOFNoSOS)
	ErrSOFUnsupported    = sentinel(StatusSOFUnsupported)
	ErrSOIDuplicate      = sentinel(StatusSOIDuplicate)
	ErrSOSNoSOF          = sentinel(StatusSOSNoSOF)
)

func sentinel(s Status) *Error {
	return &Error{Status: s, Message: s.Template()}
}

// toError converts a codec error to the boundary error type
func toError(err error) *Error {
	var ce *common.Error
	if errors.As(err, &ce) {
		return &Error{Status: ce.Code, Message: ce.Message}
	}
	return &Error{Status: StatusUnknown, Message: fmt.Sprintf("%s: %v", StatusUnknown.Template(), err)}
}
