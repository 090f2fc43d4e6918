package biz

import "errors"

var (
	// ErrIngestion marks an unreadable or empty corpus. Fatal at startup.
	ErrIngestion = errors.New("corpus ingestion failed")

	// ErrChunking marks a failure while splitting or embedding the
	// corpus. Fatal at startup.
	ErrChunking = errors.New("corpus chunking failed")

	// ErrAnswering marks a retrieval or generation failure while
	// answering a turn. Recoverable per request.
	ErrAnswering = errors.New("answer generation failed")
)
