package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ShipError covers per-ship failures surfaced by the executor
type ShipError struct {
	*DomainError
	ShipSymbol string
}

func NewShipError(shipSymbol, message string) *ShipError {
	return &ShipError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %s", shipSymbol, message)},
		ShipSymbol:  shipSymbol,
	}
}

// UnknownWaypointError indicates a waypoint the warehouse has no coordinates for
type UnknownWaypointError struct {
	*DomainError
	WaypointSymbol string
}

func NewUnknownWaypointError(waypointSymbol string) *UnknownWaypointError {
	return &UnknownWaypointError{
		DomainError:    &DomainError{Message: fmt.Sprintf("unknown waypoint: %s", waypointSymbol)},
		WaypointSymbol: waypointSymbol,
	}
}

// ArrivalTimeoutError is raised when wait-until-arrival exceeds its deadline
type ArrivalTimeoutError struct {
	*ShipError
}

func NewArrivalTimeoutError(shipSymbol string) *ArrivalTimeoutError {
	return &ArrivalTimeoutError{ShipError: NewShipError(shipSymbol, "wait for arrival timed out")}
}

// ValidationError reports a field-level validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
