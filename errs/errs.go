package errs

import "errors"

var (
	ErrDatabase          = errors.New("E0001: database error")
	ErrNotFound          = errors.New("E0002: not found")
	ErrQueue             = errors.New("E0003: queue error")
	ErrChannel           = errors.New("E0004: channel error")
	ErrSessionActive     = errors.New("E0005: enrollment session already active")
	ErrNoSession         = errors.New("E0006: no active enrollment session")
	ErrWrongStep         = errors.New("E0007: action not valid at this step")
	ErrTeamNameTooShort  = errors.New("E0008: team name must be at least 2 characters")
	ErrTeamTagTooShort   = errors.New("E0009: team tag must be at least 2 characters")
	ErrTeamNameTaken     = errors.New("E0010: team name already taken")
	ErrRosterEmpty       = errors.New("E0011: at least 1 player is required")
	ErrRosterTooLarge    = errors.New("E0012: maximum 50 players allowed")
	ErrRosterLine        = errors.New("E0013: invalid roster line")
	ErrRosterMemberLeft  = errors.New("E0014: roster member left the server")
	ErrNoTeam            = errors.New("E0015: no enrolled team")
	ErrInvalidUserID     = errors.New("E0016: invalid user ID")
	ErrNotRosterMember   = errors.New("E0017: not a roster member")
	ErrNotGuildMember    = errors.New("E0018: not a guild member")
	ErrUpdateOnly        = errors.New("E0019: only available during team update")
	ErrAlreadyRegistered = errors.New("E0020: already registered for a scrim slot")
	ErrNotRegistered     = errors.New("E0021: not registered for any scrim slot")
	ErrLocationTaken     = errors.New("E0022: location already taken")
	ErrLocationJustTaken = errors.New("E0023: location was just taken")
	ErrUnknownSlot       = errors.New("E0024: unknown time slot")
)
