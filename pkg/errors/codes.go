package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Short aliases used at call sites throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")

	// Domain specific aliases
	CodeDocumentNotFound = ErrCodeDocumentNotFound
	CodeReportNotFound   = ErrCodeReportNotFound
)

// Document Normalization Error Codes
const (
	ErrCodeDocumentEmpty             ErrorCode = "NRM_001"
	ErrCodeDocumentNotFound          ErrorCode = "NRM_002"
	ErrCodeDocumentDecodingFailed    ErrorCode = "NRM_003"
	ErrCodeDocumentFormatUnsupported ErrorCode = "NRM_004"
	ErrCodeSectionSplitFailed        ErrorCode = "NRM_005"
)

// Clause Extraction Error Codes
const (
	ErrCodeClauseExtractionFailed ErrorCode = "CLS_001"
	ErrCodeClauseTypeInvalid      ErrorCode = "CLS_002"
	ErrCodeClauseTooShort         ErrorCode = "CLS_003"
)

// Definition Extraction Error Codes
const (
	ErrCodeDefinitionExtractionFailed ErrorCode = "DEF_001"
	ErrCodeDefinitionTermEmpty        ErrorCode = "DEF_002"
)

// Ambiguity Detection Error Codes
const (
	ErrCodeAmbiguityDetectionFailed ErrorCode = "AMB_001"
	ErrCodeAmbiguityTypeInvalid     ErrorCode = "AMB_002"
)

// Semantic Diff Error Codes
const (
	ErrCodeDiffFailed                 ErrorCode = "DIF_001"
	ErrCodeSimilarityScorerFailed     ErrorCode = "DIF_002"
	ErrCodeSimilarityThresholdInvalid ErrorCode = "DIF_003"
)

// Jurisdictional Comparison Error Codes
const (
	ErrCodeJurisdictionEmpty  ErrorCode = "JUR_001"
	ErrCodeJurisdictionTooFew ErrorCode = "JUR_002"
	ErrCodeComparisonFailed   ErrorCode = "JUR_003"
	ErrCodeProfileBuildFailed ErrorCode = "JUR_004"
)

// Enforcement Modeling Error Codes
const (
	ErrCodeScenarioGenerationFailed  ErrorCode = "ENF_001"
	ErrCodeOutcomeInvalid            ErrorCode = "ENF_002"
	ErrCodeConservativeFactorInvalid ErrorCode = "ENF_003"
)

// Risk Quantification Error Codes
const (
	ErrCodeRiskIntervalInvalid    ErrorCode = "RSK_001"
	ErrCodeConfidenceLevelInvalid ErrorCode = "RSK_002"
	ErrCodeSeverityOutOfRange     ErrorCode = "RSK_003"
)

// Reporting Error Codes
const (
	ErrCodeReportNotFound          ErrorCode = "RPT_001"
	ErrCodeReportGenerationFailed  ErrorCode = "RPT_002"
	ErrCodeReportFormatUnsupported ErrorCode = "RPT_003"
	ErrCodeReportPersistFailed     ErrorCode = "RPT_004"
)

// Data Source Error Codes
const (
	ErrCodeDataSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeDataSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeDataSourceAuthFailed  ErrorCode = "SRC_003"
	ErrCodeDataSourceParseError  ErrorCode = "SRC_004"
)

// Infrastructure Error Codes (shared aliases)
const (
	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDatabaseError     = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeInternal
	CodeStorageError      = ErrCodeInternal
	CodeGraphError        = ErrCodeExternalService
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDocumentEmpty:             http.StatusBadRequest,
	ErrCodeDocumentNotFound:          http.StatusNotFound,
	ErrCodeDocumentDecodingFailed:    http.StatusBadRequest,
	ErrCodeDocumentFormatUnsupported: http.StatusBadRequest,
	ErrCodeSectionSplitFailed:        http.StatusInternalServerError,

	ErrCodeClauseExtractionFailed: http.StatusInternalServerError,
	ErrCodeClauseTypeInvalid:      http.StatusBadRequest,
	ErrCodeClauseTooShort:         http.StatusBadRequest,

	ErrCodeDefinitionExtractionFailed: http.StatusInternalServerError,
	ErrCodeDefinitionTermEmpty:        http.StatusBadRequest,

	ErrCodeAmbiguityDetectionFailed: http.StatusInternalServerError,
	ErrCodeAmbiguityTypeInvalid:     http.StatusBadRequest,

	ErrCodeDiffFailed:                 http.StatusInternalServerError,
	ErrCodeSimilarityScorerFailed:     http.StatusInternalServerError,
	ErrCodeSimilarityThresholdInvalid: http.StatusBadRequest,

	ErrCodeJurisdictionEmpty:  http.StatusBadRequest,
	ErrCodeJurisdictionTooFew: http.StatusBadRequest,
	ErrCodeComparisonFailed:   http.StatusInternalServerError,
	ErrCodeProfileBuildFailed: http.StatusInternalServerError,

	ErrCodeScenarioGenerationFailed:  http.StatusInternalServerError,
	ErrCodeOutcomeInvalid:            http.StatusBadRequest,
	ErrCodeConservativeFactorInvalid: http.StatusBadRequest,

	ErrCodeRiskIntervalInvalid:    http.StatusInternalServerError,
	ErrCodeConfidenceLevelInvalid: http.StatusBadRequest,
	ErrCodeSeverityOutOfRange:     http.StatusInternalServerError,

	ErrCodeReportNotFound:          http.StatusNotFound,
	ErrCodeReportGenerationFailed:  http.StatusInternalServerError,
	ErrCodeReportFormatUnsupported: http.StatusBadRequest,
	ErrCodeReportPersistFailed:     http.StatusInternalServerError,

	ErrCodeDataSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeDataSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeDataSourceAuthFailed:  http.StatusBadGateway,
	ErrCodeDataSourceParseError:  http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDocumentEmpty:             "document contains no usable text",
	ErrCodeDocumentNotFound:          "document not found",
	ErrCodeDocumentDecodingFailed:    "failed to decode document",
	ErrCodeDocumentFormatUnsupported: "unsupported document format",
	ErrCodeSectionSplitFailed:        "failed to split document into sections",

	ErrCodeClauseExtractionFailed: "clause extraction failed",
	ErrCodeClauseTypeInvalid:      "invalid clause type",
	ErrCodeClauseTooShort:         "clause below minimum length",

	ErrCodeDefinitionExtractionFailed: "definition extraction failed",
	ErrCodeDefinitionTermEmpty:        "definition term is empty",

	ErrCodeAmbiguityDetectionFailed: "ambiguity detection failed",
	ErrCodeAmbiguityTypeInvalid:     "invalid ambiguity type",

	ErrCodeDiffFailed:                 "semantic diff failed",
	ErrCodeSimilarityScorerFailed:     "similarity scoring failed",
	ErrCodeSimilarityThresholdInvalid: "invalid similarity threshold",

	ErrCodeJurisdictionEmpty:  "jurisdiction has no documents",
	ErrCodeJurisdictionTooFew: "at least two jurisdictions are required",
	ErrCodeComparisonFailed:   "jurisdictional comparison failed",
	ErrCodeProfileBuildFailed: "failed to build jurisdiction profile",

	ErrCodeScenarioGenerationFailed:  "enforcement scenario generation failed",
	ErrCodeOutcomeInvalid:            "invalid enforcement outcome",
	ErrCodeConservativeFactorInvalid: "conservative factor must be >= 1.0",

	ErrCodeRiskIntervalInvalid:    "risk interval bounds are inconsistent",
	ErrCodeConfidenceLevelInvalid: "confidence level must be in (0, 1)",
	ErrCodeSeverityOutOfRange:     "severity score outside [0, 1]",

	ErrCodeReportNotFound:          "report not found",
	ErrCodeReportGenerationFailed:  "failed to generate gap report",
	ErrCodeReportFormatUnsupported: "unsupported report format",
	ErrCodeReportPersistFailed:     "failed to persist report",

	ErrCodeDataSourceUnavailable: "data source unavailable",
	ErrCodeDataSourceRateLimited: "data source rate limited",
	ErrCodeDataSourceAuthFailed:  "data source authentication failed",
	ErrCodeDataSourceParseError:  "failed to parse data source response",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
