package domain

import "errors"

// ErrFormNotFound is returned when a form definition cannot be found in a store.
var ErrFormNotFound = errors.New("form not found")

// ErrTemplateNotFound is returned when a template cannot be found in the library.
var ErrTemplateNotFound = errors.New("template not found")

// ErrUnknownCommand is returned when a named command is not part of the command surface.
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidArguments is returned when command arguments cannot be decoded.
var ErrInvalidArguments = errors.New("invalid command arguments")
