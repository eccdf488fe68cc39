package chat

import "errors"

var (
	// ErrFileRepositoryRequired is returned when a file repository is not provided.
	ErrFileRepositoryRequired = errors.New("file repository required")

	// ErrChatRepositoryRequired is returned when a chat history repository is not provided.
	ErrChatRepositoryRequired = errors.New("chat history repository required")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrEmptyQuestion is returned when the question is blank.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrFileNotOwned is returned when the requested file does not belong
	// to the asking user.
	ErrFileNotOwned = errors.New("file not found for user")
)
