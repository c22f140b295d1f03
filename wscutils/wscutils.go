// Package wscutils holds the request and response envelope shared by the
// web services, and the mapping from error codes to message ids.
//
// Every response has the shape
//
//	{"status": "success"|"error", "data": ..., "messages": [{"msgid", "errcode", "field", "vals"}]}
package wscutils

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed errortypes.yaml
var defaultErrorTypes []byte

var (
	errorTypesMu sync.RWMutex
	errorTypes   map[string]int
)

func init() {
	if err := LoadErrorTypes(bytes.NewReader(defaultErrorTypes)); err != nil {
		panic(err)
	}
}

// LoadErrorTypes replaces the errcode to msgid table with the YAML mapping
// read from r.
func LoadErrorTypes(r io.Reader) error {
	byteValue, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading error types: %w", err)
	}

	types := make(map[string]int)
	if err := yaml.Unmarshal(byteValue, &types); err != nil {
		return fmt.Errorf("parsing error types: %w", err)
	}
	if _, ok := types[ErrcodeUnknown]; !ok {
		return fmt.Errorf("error types must define %q", ErrcodeUnknown)
	}

	errorTypesMu.Lock()
	errorTypes = types
	errorTypesMu.Unlock()
	return nil
}

// MsgID returns the message id for errcode and whether it is known.
func MsgID(errcode string) (int, bool) {
	errorTypesMu.RLock()
	defer errorTypesMu.RUnlock()
	id, ok := errorTypes[errcode]
	return id, ok
}

// Request represents the standard structure of a request to the web service.
type Request struct {
	Data any `json:"data" binding:"required"`
}

// Response represents the standard structure of a response of the web service.
type Response struct {
	Status   string         `json:"status"`
	Data     any            `json:"data"`
	Messages []ErrorMessage `json:"messages"`
}

// ErrorMessage defines the format of error part of the standard response object
type ErrorMessage struct {
	MsgID   int      `json:"msgid"`
	ErrCode string   `json:"errcode"`
	Field   *string  `json:"field,omitempty"`
	Vals    []string `json:"vals,omitempty"`
}

var validate = newValidator()

// newValidator reports fields by their json name, falling back to the Go
// field name for untagged fields.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// WscValidate validates data by its struct tags and returns one ErrorMessage
// per failed rule, with the validator tag as errcode. getVals supplies the
// request-specific values to report; it may be nil.
func WscValidate[T any](data T, getVals func(err validator.FieldError) []string) []ErrorMessage {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []ErrorMessage{BuildErrorMessage(ErrcodeUnknown, nil)}
	}

	messages := make([]ErrorMessage, 0, len(validationErrs))
	for _, fe := range validationErrs {
		var vals []string
		if getVals != nil {
			vals = getVals(fe)
		}
		field := fe.Field()
		messages = append(messages, BuildErrorMessage(fe.Tag(), &field, vals...))
	}
	return messages
}

// BuildErrorMessage generates an ErrorMessage for errcode. Unknown codes get
// the msgid of ErrcodeUnknown but keep their own errcode.
//
//	BuildErrorMessage("invalid_amount", &field, "12a")
func BuildErrorMessage(errcode string, fieldName *string, vals ...string) ErrorMessage {
	msgid, exists := MsgID(errcode)
	if !exists {
		log.Printf("Unrecognized errcode: %s", errcode)
		msgid, _ = MsgID(ErrcodeUnknown)
	}

	return ErrorMessage{
		MsgID:   msgid,
		ErrCode: errcode,
		Field:   fieldName,
		Vals:    vals,
	}
}

func NewResponse(status string, data any, messages []ErrorMessage) *Response {
	return &Response{
		Status:   status,
		Data:     data,
		Messages: messages,
	}
}

// BindJSON binds the "data" member of the request body into data. On failure
// it answers 400 with invalid_json and returns the binding error.
func BindJSON(c *gin.Context, data any) error {
	req := Request{Data: data}
	if err := c.ShouldBindJSON(&req); err != nil {
		SendErrorResponse(c, NewErrorResponse(ErrcodeInvalidJson))
		return err
	}
	return nil
}

// NewErrorResponse builds an error response with a single message.
func NewErrorResponse(errcode string) *Response {
	return NewResponse(ErrorStatus, nil, []ErrorMessage{BuildErrorMessage(errcode, nil)})
}

// NewFieldErrorResponse builds an error response with a single message about
// one request field.
func NewFieldErrorResponse(errcode, field string, vals ...string) *Response {
	return NewResponse(ErrorStatus, nil, []ErrorMessage{BuildErrorMessage(errcode, &field, vals...)})
}

func NewSuccessResponse(data any) *Response {
	return NewResponse(SuccessStatus, data, nil)
}

func SendSuccessResponse(c *gin.Context, response *Response) {
	c.JSON(http.StatusOK, response)
}

// SendErrorResponse sends a 400 JSON error response.
func SendErrorResponse(c *gin.Context, response *Response) {
	SendErrorResponseWithStatus(c, http.StatusBadRequest, response)
}

func SendErrorResponseWithStatus(c *gin.Context, status int, response *Response) {
	c.JSON(status, response)
}
