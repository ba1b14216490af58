// Package result holds the status codes and response shape shared by the
// scanner and inventory wrappers.
package result

import (
	"errors"
	"fmt"
	"regexp"
)

type StatusCode int

const (
	EmptyAttribute              StatusCode = 1001
	InstallDependency           StatusCode = 1003
	CloneError                  StatusCode = 1004
	UnexpectedError             StatusCode = 1005
	SubprocessError             StatusCode = 1006
	FileError                   StatusCode = 1009
	PackageNotFound             StatusCode = 1010
	FieldValueError             StatusCode = 1013
	JSONEncodeError             StatusCode = 1018
	SubprocessOutputDecodeError StatusCode = 1019
	Success                     StatusCode = 2000
	NoData                      StatusCode = 2001
)

var codeNames = map[StatusCode]string{
	EmptyAttribute:              "EMPTY_ATTRIBUTE",
	InstallDependency:           "INSTALL_DEPENDENCY",
	CloneError:                  "CLONE_ERROR",
	UnexpectedError:             "UNEXPECTED_ERROR",
	SubprocessError:             "SUBPROCESS_ERROR",
	FileError:                   "FILE_ERROR",
	PackageNotFound:             "PACKAGE_NOT_FOUND",
	FieldValueError:             "FIELD_VALUE_ERROR",
	JSONEncodeError:             "JSON_ENCODE_ERROR",
	SubprocessOutputDecodeError: "SUBPROCESS_OUTPUT_DECODE_ERROR",
	Success:                     "SUCCESS",
	NoData:                      "NO_DATA",
}

func (c StatusCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(c))
}

// ModuleError is returned by wrappers when an external tool run fails.
// Subprocess fields are zero when the failure did not come from a child process.
type ModuleError struct {
	Code       StatusCode
	Msg        string
	ExitCode   int
	Stdout     []byte
	Stderr     []byte
	Additional string
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Errorf builds a ModuleError without subprocess details.
func Errorf(code StatusCode, format string, args ...interface{}) *ModuleError {
	return &ModuleError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Response is the JSON document printed at the end of scan and inventory runs.
type Response struct {
	Module         string `json:"module"`
	Response       string `json:"response"`
	StatusCode     int    `json:"status_code"`
	OutputFile     string `json:"output_file,omitempty"`
	TablesScanned  *int   `json:"tables_scanned,omitempty"`
	TablesWithData *int   `json:"tables_with_data,omitempty"`
	FindingsCount  int    `json:"findings_count,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	ReturnCode     *int   `json:"subprocess_return_code,omitempty"`
	Stdout         string `json:"subprocess_standard_output,omitempty"`
	Stderr         string `json:"subprocess_standard_error,omitempty"`
}

// Count returns a pointer for the table counters, which are reported even
// when zero by the inventory and omitted by the scanner.
func Count(n int) *int {
	return &n
}

// FromError converts any error into an error Response. ModuleError details
// are carried over with secrets redacted.
func FromError(module string, err error) Response {
	var me *ModuleError
	if !errors.As(err, &me) {
		return Response{
			Module:     module,
			Response:   fmt.Sprintf("[%s]: unexpected error: %s", module, Redact(err.Error())),
			StatusCode: int(UnexpectedError),
		}
	}

	resp := Response{
		Module:         module,
		Response:       fmt.Sprintf("[%s]: %s", module, Redact(me.Msg)),
		StatusCode:     int(me.Code),
		AdditionalInfo: me.Additional,
	}
	if me.Stdout != nil || me.Stderr != nil || me.ExitCode != 0 {
		rc := me.ExitCode
		resp.ReturnCode = &rc
		resp.Stdout = Redact(string(me.Stdout))
		resp.Stderr = Redact(string(me.Stderr))
	}
	return resp
}

var (
	pemBlock    = regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`)
	fingerprint = regexp.MustCompile(`\b(?:[0-9a-fA-F]{2}:){15}[0-9a-fA-F]{2}\b`)
	awsSecret   = regexp.MustCompile(`(?:AWS|aws_secret_access_key).*?[A-Za-z0-9/+]{40}`)
)

// Redact strips private keys, key fingerprints and AWS-style secrets.
func Redact(s string) string {
	s = pemBlock.ReplaceAllString(s, "[REDACTED PRIVATE KEY]")
	s = fingerprint.ReplaceAllString(s, "[REDACTED FINGERPRINT]")
	s = awsSecret.ReplaceAllString(s, "[REDACTED]")
	return s
}
