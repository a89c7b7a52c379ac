package utils

import "errors"

// ----------------- product api ------------------
var (
	ErrUnauthorized   = errors.New("product api rejected the token")
	ErrAPIUnavailable = errors.New("product api is unavailable")
)

// ----------------- catalog ------------------
var (
	ErrUnknownEntry     = errors.New("unknown entry id")
	ErrInvalidSortSpec  = errors.New("invalid sort spec")
	ErrReloadSuperseded = errors.New("reload superseded by a newer one")
)

// ----------------- export ------------------
var (
	ErrNoExportFields     = errors.New("export field list is empty")
	ErrNothingToExport    = errors.New("no entries to export")
	ErrUnknownExportField = errors.New("unknown export field")
	ErrUnknownFormat      = errors.New("unknown export format")
)
