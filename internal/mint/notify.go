package mint

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier receives user-facing lifecycle messages.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, msg string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

// Notification messages.
const (
	MsgSent      = "Minting NFT"
	MsgConfirmed = "Minted successfully"
)
