package headless

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"

	"github.com/bnema/deskview/internal/domain/entity"
)

// Engine-style error codes reported in entity.LoadError.Code.
const (
	CodeAborted            = "ERR_ABORTED"
	CodeCertAuthority      = "ERR_CERT_AUTHORITY_INVALID"
	CodeCertCommonName     = "ERR_CERT_COMMON_NAME_INVALID"
	CodeCertInvalid        = "ERR_CERT_INVALID"
	CodeNameNotResolved    = "ERR_NAME_NOT_RESOLVED"
	CodeTimedOut           = "ERR_TIMED_OUT"
	CodeConnectionFailed   = "ERR_CONNECTION_FAILED"
	CodeHTTPResponseFailed = "ERR_HTTP_RESPONSE_CODE_FAILURE"
)

// ClassifyError maps a transport error to a load error.
func ClassifyError(rawURL string, err error) *entity.LoadError {
	loadErr := &entity.LoadError{URL: rawURL, Err: err, Kind: entity.LoadErrorOther, Code: CodeConnectionFailed}

	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
		dnsErr           *net.DNSError
	)

	switch {
	case errors.Is(err, context.Canceled):
		loadErr.Kind = entity.LoadErrorAborted
		loadErr.Code = CodeAborted
	case errors.As(err, &unknownAuthority):
		loadErr.Kind = entity.LoadErrorCertificate
		loadErr.Code = CodeCertAuthority
	case errors.As(err, &hostnameErr):
		loadErr.Kind = entity.LoadErrorCertificate
		loadErr.Code = CodeCertCommonName
	case errors.As(err, &invalidCert), errors.As(err, &verifyErr):
		loadErr.Kind = entity.LoadErrorCertificate
		loadErr.Code = CodeCertInvalid
	case errors.Is(err, context.DeadlineExceeded):
		loadErr.Code = CodeTimedOut
	case errors.As(err, &dnsErr):
		loadErr.Code = CodeNameNotResolved
	}
	return loadErr
}

// statusError reports a server-side failure response.
func statusError(rawURL string, status int) *entity.LoadError {
	return &entity.LoadError{
		Kind: entity.LoadErrorOther,
		Code: CodeHTTPResponseFailed,
		URL:  rawURL,
		Err:  fmt.Errorf("unexpected status %d", status),
	}
}
