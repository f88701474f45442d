package domain

import (
	"errors"
	"fmt"
)

// Базовые ошибки для проверки через errors.Is
var (
	ErrNotFound         = errors.New("сессия не найдена")
	ErrAlreadyExists    = errors.New("сессия уже существует")
	ErrInvalidState     = errors.New("действие недоступно в текущем состоянии")
	ErrValidation       = errors.New("некорректные данные")
	ErrUnknownCandidate = errors.New("кандидат не является игроком сессии")
)

// NotFoundError - для чата нет сессии
type NotFoundError struct {
	ChatID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no session for chat %d", e.ChatID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyExistsError - в чате уже идет активная сессия
type AlreadyExistsError struct {
	ChatID int64
	State  GameState
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("chat %d already has a session in state %s", e.ChatID, e.State)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// InvalidStateError - операция Op нелегальна в состоянии State
type InvalidStateError struct {
	Op    string
	State GameState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not allowed in state %s", e.Op, e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// ValidationError - пользователь прислал некорректные данные, состояние не меняется
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnknownCandidateError - голос за того, кто не играл
type UnknownCandidateError struct {
	CandidateID int64
}

func (e *UnknownCandidateError) Error() string {
	return fmt.Sprintf("player %d is not part of this session", e.CandidateID)
}

func (e *UnknownCandidateError) Is(target error) bool { return target == ErrUnknownCandidate }
