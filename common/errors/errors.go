/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "NotFound"
	ErrorTypeServerError  ErrorType = "ServerError"
	ErrorTypeDBError      ErrorType = "DBError"
	ErrorTypeBadRequest   ErrorType = "BadRequest"
	ErrorTypeMandatory    ErrorType = "Mandatory"
	ErrorTypeUnknown      ErrorType = "Unknown"
	ErrorTypeConfig       ErrorType = "ConfigurationError"
	ErrorTypeCollaborator ErrorType = "CollaboratorUnavailable"
)

type CommonPrognosError struct {
	errorType ErrorType
	message   string
}

type PrognosError interface {
	ErrorType() ErrorType
	Message() string
	IsErrorType(errorType ErrorType) bool
	Error() string
	ConvertToHTTPError() *echo.HTTPError
}

func (p CommonPrognosError) ErrorType() ErrorType {
	return p.errorType
}

func (p CommonPrognosError) Message() string {
	return p.message
}

func (p CommonPrognosError) Error() string {
	return p.message
}

func (p CommonPrognosError) IsErrorType(errorType ErrorType) bool {
	return errorType == p.errorType
}

func (p CommonPrognosError) ConvertToHTTPError() *echo.HTTPError {
	return echo.NewHTTPError(errorTypeToCode(p.ErrorType()), p.Message())
}

func NewCommonPrognosError(errorType ErrorType, message string) CommonPrognosError {
	return CommonPrognosError{errorType, message}
}

func errorTypeToCode(status ErrorType) int {
	switch status {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeBadRequest, ErrorTypeMandatory:
		return http.StatusBadRequest
	case ErrorTypeCollaborator:
		return http.StatusServiceUnavailable
	case ErrorTypeServerError, ErrorTypeDBError, ErrorTypeUnknown, ErrorTypeConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
