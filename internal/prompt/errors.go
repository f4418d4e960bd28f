package prompt

import "errors"

var (
	// ErrUnknownPromptKind indicates a prompt kind with no template
	ErrUnknownPromptKind = errors.New("unknown prompt kind")

	// ErrTemplateInvalid indicates a template failed to parse or execute
	ErrTemplateInvalid = errors.New("invalid prompt template")
)
