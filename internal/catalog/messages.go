package catalog

// messages.go maps load problems to user-friendly messages with codes.
//
// Codes keep the numbering used across the importer:
//
//	FILE001 - File could not be opened or read
//	FILE002 - File is not valid CSV
//	FILE005 - File has no header row
//	FILE006 - Price directory is missing or unreadable
//	VAL002  - Price or weight is not a number
//	VAL004  - A product, price or weight column is missing
//	VAL007  - Weight is zero or negative
//	VAL008  - Price is negative
//	ERR000  - Anything else

import "errors"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorMapping ties a sentinel error to its user message.
// The first mapping whose sentinel matches via errors.Is wins.
type errorMapping struct {
	target error
	msg    UserMessage
}

var errorMappings = []errorMapping{
	{
		target: ErrDirectory,
		msg: UserMessage{
			Message: "Price directory is missing or unreadable",
			Action:  "Check the directory path and its permissions",
			Code:    "FILE006",
		},
	},
	{
		target: ErrUnreadableFile,
		msg: UserMessage{
			Message: "Price list could not be read",
			Action:  "Check that the file is not locked or truncated",
			Code:    "FILE001",
		},
	},
	{
		target: ErrInvalidCSV,
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with balanced quotes",
			Code:    "FILE002",
		},
	},
	{
		target: ErrEmptyFile,
		msg: UserMessage{
			Message: "Price list is empty",
			Action:  "Add a header row and at least one product",
			Code:    "FILE005",
		},
	},
	{
		target: ErrHeadersUnresolved,
		msg: UserMessage{
			Message: "Product, price or weight column is missing",
			Action:  "Name the columns e.g. Товар, Цена, Вес",
			Code:    "VAL004",
		},
	},
	{
		target: ErrInvalidNumber,
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Use a dot as decimal separator, e.g. 12.50",
			Code:    "VAL002",
		},
	},
	{
		target: ErrNonPositiveWeight,
		msg: UserMessage{
			Message: "Weight must be greater than zero",
			Action:  "Fill in the package weight in kilograms",
			Code:    "VAL007",
		},
	},
	{
		target: ErrNegativePrice,
		msg: UserMessage{
			Message: "Price must not be negative",
			Action:  "Check the sign of the price",
			Code:    "VAL008",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for details",
	Code:    "ERR000",
}

// MapError converts a load error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return defaultMessage
}

// MapDiagnostic converts a diagnostic to a user-friendly message.
func MapDiagnostic(d Diagnostic) UserMessage {
	return MapError(d.Err)
}
