package model

// Action is what the user wants to do with an utterance.
type Action string

// Supported actions.
const (
	ActionCreateTransaction Action = "CREATE_TRANSACTION"
	ActionViewStats         Action = "VIEW_STATS"
	ActionEditTransaction   Action = "EDIT_TRANSACTION"
	ActionDeleteTransaction Action = "DELETE_TRANSACTION"
)

// Actions lists every action in classifier label order.
var Actions = []Action{
	ActionCreateTransaction,
	ActionViewStats,
	ActionEditTransaction,
	ActionDeleteTransaction,
}

// ParseAction returns the action with the given name.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}
