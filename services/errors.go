package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации конфигурации турнира. Диапазоны исторические, из
	// первых BGMI-скримов: 10-32 команды (чётно), лобби 2-16, 1-7 дней,
	// 1-6 матчей в день.
	ErrTournamentNameRequired       = errors.New("tournament name is required")
	ErrStartDateRequired            = errors.New("tournament start date is required")
	ErrStartDateInvalid             = errors.New("tournament start date must be in YYYY-MM-DD format")
	ErrTotalTeamsOutOfRange         = errors.New("total teams must be between 10 and 32")
	ErrTotalTeamsOdd                = errors.New("total teams must be an even number")
	ErrTotalTeamsBelowRoster        = errors.New("total teams cannot be less than the teams already registered")
	ErrTeamsPerMatchOutOfRange      = errors.New("teams per match must be between 2 and 16")
	ErrTeamsPerMatchExceedsRoster   = errors.New("teams per match cannot exceed total teams")
	ErrTournamentDaysOutOfRange     = errors.New("tournament days must be between 1 and 7")
	ErrMatchesPerDayOutOfRange      = errors.New("matches per day must be between 1 and 6")
	ErrMatchesPerTeamOutOfRange     = errors.New("matches per team must be between 1 and 6")
	ErrTournamentInvalidStatus      = errors.New("invalid tournament status provided")
	ErrInvalidStatusTransition      = errors.New("invalid tournament status transition")
	ErrTournamentUpdateNotAllowed   = errors.New("tournament can only be edited while in draft")
	ErrTournamentDeletionNotAllowed = errors.New("only draft or canceled tournaments can be deleted")

	// Ошибки состава
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrDuplicateTeamName = errors.New("team name is already used in this tournament")
	ErrRosterFull        = errors.New("tournament roster is already full")
	ErrRosterLocked      = errors.New("roster can only be changed while tournament is in draft")
	ErrRosterIncomplete  = errors.New("roster must be complete before generating a schedule")

	// Ошибки генерации и выгрузки расписания
	ErrScheduleAlreadyExists = errors.New("schedule has already been generated for this tournament")
	ErrScheduleNotGenerated  = errors.New("schedule has not been generated yet")
	ErrRegenerateNotAllowed  = errors.New("schedule can only be regenerated before the tournament starts")
	ErrExportStorageDisabled = errors.New("export storage is not configured")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament with this name already exists for the organizer")
	ErrTeamNotFound           = errors.New("team not found")
)
