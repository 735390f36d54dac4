package petition

import (
	"errors"
	"time"
)

// SheetState is the physical custody state of a petition sheet. The values
// are the wire/database keys inherited from the TSE process and are kept
// verbatim.
type SheetState string

const (
	SheetPendingDelivery SheetState = "PENDIENTE_ENTREGA"
	SheetInCirculation   SheetState = "CIRCULACION"
	SheetReceived        SheetState = "RECIBIDA"
	SheetAtTSE           SheetState = "EN_TSE"
	SheetProcessed       SheetState = "PROCESADA"
)

// AdhesionState is the legal-validity outcome of a single signature line.
type AdhesionState string

const (
	AdhesionPending          AdhesionState = "PENDIENTE"
	AdhesionAccepted         AdhesionState = "ACEPTADO"
	AdhesionRejected         AdhesionState = "RECHAZADO"
	AdhesionTSEReview        AdhesionState = "REVISION_TSE"
	AdhesionOmitted          AdhesionState = "OMITIDO"
	AdhesionInternalRejected AdhesionState = "RECHAZADO_INTERNO"
)

// RejectionCause is the reason attached to a rejected line.
type RejectionCause string

const (
	CauseNotRegistered     RejectionCause = "NO_EMPADRONADO"
	CauseSignatureMismatch RejectionCause = "FIRMA_NO_COINCIDE"
	CauseCaptureError      RejectionCause = "ERROR_CAPTURA"
	CauseIncompleteData    RejectionCause = "DATOS_INCOMPLETOS"
	CauseDuplicate         RejectionCause = "DUPLICADO"
	CauseFingerprint       RejectionCause = "IMPRESION_DACTILAR"
	CauseBlankForm         RejectionCause = "PLANA"
	CauseAffiliated        RejectionCause = "AFILIADO"
	CauseRegistryUpdate    RejectionCause = "ACTUALIZACION_PADRON"
)

// LinesPerSheet is the block-integrity invariant: every sheet owns exactly
// five signature lines, positions 1..5.
const LinesPerSheet = 5

var SheetStates = []SheetState{
	SheetPendingDelivery,
	SheetInCirculation,
	SheetReceived,
	SheetAtTSE,
	SheetProcessed,
}

var AdhesionStates = []AdhesionState{
	AdhesionPending,
	AdhesionAccepted,
	AdhesionRejected,
	AdhesionTSEReview,
	AdhesionOmitted,
	AdhesionInternalRejected,
}

var RejectionCauses = []RejectionCause{
	CauseNotRegistered,
	CauseSignatureMismatch,
	CauseCaptureError,
	CauseIncompleteData,
	CauseDuplicate,
	CauseFingerprint,
	CauseBlankForm,
	CauseAffiliated,
	CauseRegistryUpdate,
}

// FraudCauses are the rejection causes statistically associated with
// falsification; they drive the fraud-alert percentage.
var FraudCauses = map[RejectionCause]bool{
	CauseFingerprint:       true,
	CauseBlankForm:         true,
	CauseSignatureMismatch: true,
}

func ValidSheetState(s SheetState) bool {
	for _, v := range SheetStates {
		if v == s {
			return true
		}
	}
	return false
}

func ValidAdhesionState(s AdhesionState) bool {
	for _, v := range AdhesionStates {
		if v == s {
			return true
		}
	}
	return false
}

func ValidRejectionCause(c RejectionCause) bool {
	for _, v := range RejectionCauses {
		if v == c {
			return true
		}
	}
	return false
}

// IsRejection reports whether a line counts as rejected for analytics and
// cause-persistence purposes (both external and internal rejections).
func IsRejection(s AdhesionState) bool {
	return s == AdhesionRejected || s == AdhesionInternalRejected
}

type LeaderState string

const (
	LeaderActive   LeaderState = "activo"
	LeaderInactive LeaderState = "inactivo"
)

// Leader is a field organizer to whom sheets are assigned.
type Leader struct {
	ID        string
	Name      string
	Zone      *string
	DPI       string
	State     LeaderState
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the leader was soft-deleted. Every mutating path
// must check this: a deleted leader is read-only and excluded from listings.
func (l Leader) Deleted() bool {
	return l.DeletedAt != nil
}

// Sheet is a physical petition form with five signature slots.
type Sheet struct {
	ID         string
	Number     int
	LeaderID   string
	State      SheetState
	AssignedAt time.Time
	ReceivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AdhesionLine is one of the five signature slots on a sheet.
type AdhesionLine struct {
	ID          string
	SheetID     string
	Line        int
	CitizenDPI  *string
	CitizenName *string
	State       AdhesionState
	Cause       *RejectionCause
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
)
