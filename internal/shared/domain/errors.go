package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classe les erreurs remontées aux appelants
type ErrorKind string

const (
	// KindInvalidReference: un final product ou une annonce référencé n'existe pas
	KindInvalidReference ErrorKind = "InvalidReference"
	// KindConstraintViolation: le store refuse une écriture (intégrité référentielle)
	KindConstraintViolation ErrorKind = "ConstraintViolation"
	// KindTransientStore: problème de connexion ou timeout, réessayable par l'appelant
	KindTransientStore ErrorKind = "TransientStoreError"
	// KindInvalidInput: paramètre mal formé
	KindInvalidInput ErrorKind = "InvalidInput"
)

// Error est l'erreur structurée du moteur
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError crée une erreur structurée
func NewError(kind ErrorKind, op string, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// InvalidReference construit une erreur KindInvalidReference
func InvalidReference(op string, format string, args ...interface{}) *Error {
	return NewError(KindInvalidReference, op, fmt.Sprintf(format, args...), nil)
}

// InvalidInput construit une erreur KindInvalidInput
func InvalidInput(op string, format string, args ...interface{}) *Error {
	return NewError(KindInvalidInput, op, fmt.Sprintf(format, args...), nil)
}

// KindOf retourne le type d'une erreur structurée, "" sinon
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind vérifie si err (ou une erreur enveloppée) est du type donné
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
