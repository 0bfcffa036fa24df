package constants

// Session and context keys
const (
	SessionCookieName   = "kanban_session"
	ContextKeyUsername  = "username"
	ContextKeyRole      = "role"
	ContextKeyTask      = "task"
	SessionKeyMustReset = "must_change_password"
	SessionMaxAgeSecond = 86400 * 7
)

// Validation limits
const (
	MinPasswordLength = 6
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
	MaxUsernameLength = 100
	MaxTitleLength    = 255
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Board
const (
	// AllAssigneesFilter selects every task on the board regardless of assignees.
	AllAssigneesFilter = "(All)"

	DefaultDueSoonDays     = 7
	DefaultCardWarningDays = 3
)

// Ledger
const (
	DefaultMaxEvidenceBytes = 5 << 20
	EvidenceFormField       = "evidence"
	// MultipartOverheadBytes bounds the non-file part of an upload request.
	MultipartOverheadBytes  = 1 << 20
)

// AI
const (
	MaxAIGeneratedTasks = 20
)
