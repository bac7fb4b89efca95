// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verify

import "strconv"

// ErrorCode is an OpenSSL X509_V_* verification result.
type ErrorCode int

// Verification results, numbered as OpenSSL numbers them.
const (
	CodeOK                          ErrorCode = 0
	CodeUnableToGetIssuerCert       ErrorCode = 2
	CodeUnableToGetCRL              ErrorCode = 3
	CodeUnableToDecryptCertSig      ErrorCode = 4
	CodeUnableToDecryptCRLSig       ErrorCode = 5
	CodeUnableToDecodeIssuerKey     ErrorCode = 6
	CodeCertSignatureFailure        ErrorCode = 7
	CodeCRLSignatureFailure         ErrorCode = 8
	CodeCertNotYetValid             ErrorCode = 9
	CodeCertHasExpired              ErrorCode = 10
	CodeCRLNotYetValid              ErrorCode = 11
	CodeCRLHasExpired               ErrorCode = 12
	CodeBadNotBefore                ErrorCode = 13
	CodeBadNotAfter                 ErrorCode = 14
	CodeBadCRLLastUpdate            ErrorCode = 15
	CodeBadCRLNextUpdate            ErrorCode = 16
	CodeOutOfMemory                 ErrorCode = 17
	CodeDepthZeroSelfSigned         ErrorCode = 18
	CodeSelfSignedInChain           ErrorCode = 19
	CodeUnableToGetIssuerLocally    ErrorCode = 20
	CodeUnableToVerifyLeafSignature ErrorCode = 21
	CodeChainTooLong                ErrorCode = 22
	CodeCertRevoked                 ErrorCode = 23
	CodeInvalidCA                   ErrorCode = 24
	CodePathLengthExceeded          ErrorCode = 25
	CodeInvalidPurpose              ErrorCode = 26
	CodeCertUntrusted               ErrorCode = 27
	CodeCertRejected                ErrorCode = 28
	CodeSubjectIssuerMismatch       ErrorCode = 29
	CodeKeyIDMismatch               ErrorCode = 30
	CodeIssuerSerialMismatch        ErrorCode = 31
	CodeKeyUsageNoCertSign          ErrorCode = 32
)

// unknownDescription is reported for codes missing from descriptions.
const unknownDescription = "unknown verification error"

var descriptions = map[ErrorCode]string{
	CodeOK:                          "ok",
	CodeUnableToGetIssuerCert:       "unable to get issuer certificate",
	CodeUnableToGetCRL:              "unable to get certificate CRL",
	CodeUnableToDecryptCertSig:      "unable to decrypt certificate's signature",
	CodeUnableToDecryptCRLSig:       "unable to decrypt CRL's signature",
	CodeUnableToDecodeIssuerKey:     "unable to decode issuer public key",
	CodeCertSignatureFailure:        "certificate signature failure",
	CodeCRLSignatureFailure:         "CRL signature failure",
	CodeCertNotYetValid:             "certificate is not yet valid",
	CodeCertHasExpired:              "certificate has expired",
	CodeCRLNotYetValid:              "CRL is not yet valid",
	CodeCRLHasExpired:               "CRL has expired",
	CodeBadNotBefore:                "format error in certificate's notBefore field",
	CodeBadNotAfter:                 "format error in certificate's notAfter field",
	CodeBadCRLLastUpdate:            "format error in CRL's lastUpdate field",
	CodeBadCRLNextUpdate:            "format error in CRL's nextUpdate field",
	CodeOutOfMemory:                 "out of memory",
	CodeDepthZeroSelfSigned:         "self signed certificate",
	CodeSelfSignedInChain:           "self signed certificate in certificate chain",
	CodeUnableToGetIssuerLocally:    "unable to get local issuer certificate",
	CodeUnableToVerifyLeafSignature: "unable to verify the first certificate",
	CodeChainTooLong:                "certificate chain too long",
	CodeCertRevoked:                 "certificate revoked",
	CodeInvalidCA:                   "invalid CA certificate",
	CodePathLengthExceeded:          "path length constraint exceeded",
	CodeInvalidPurpose:              "unsupported certificate purpose",
	CodeCertUntrusted:               "certificate not trusted",
	CodeCertRejected:                "certificate rejected",
	CodeSubjectIssuerMismatch:       "subject issuer mismatch",
	CodeKeyIDMismatch:               "authority and subject key identifier mismatch",
	CodeIssuerSerialMismatch:        "authority and issuer serial number mismatch",
	CodeKeyUsageNoCertSign:          "key usage does not include certificate signing",
}

// Known reports whether the code has a description.
func (c ErrorCode) Known() bool {
	_, ok := descriptions[c]
	return ok
}

// String returns the human-readable description of the code. Codes outside
// the table render as "unknown verification error (N)" so the raw value is
// never lost.
func (c ErrorCode) String() string {
	if desc, ok := descriptions[c]; ok {
		return desc
	}
	return unknownDescription + " (" + strconv.Itoa(int(c)) + ")"
}
