package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no room matches the given id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPlayerNotFound is returned when a player does not exist or belongs to another room.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrQuestionNotFound indicates a question id is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAnswerNotFound indicates the player has not answered the question.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrNoQuestions is returned when a game is started without any questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidChoice indicates a selected option outside A-D.
	ErrInvalidChoice = errors.New("invalid answer choice")
	// ErrAnswersLocked is returned once the current question has been revealed.
	ErrAnswersLocked = errors.New("answers are locked for this question")
	// ErrQuestionNotActive is returned when answering a question that is not currently open.
	ErrQuestionNotActive = errors.New("question is not active")
	// ErrInvalidTransition is returned when a room action does not apply to its current status.
	ErrInvalidTransition = errors.New("invalid room transition")
	// ErrSessionNotFound is returned when a restore token is unknown, expired or stale.
	ErrSessionNotFound = errors.New("player session not found")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
