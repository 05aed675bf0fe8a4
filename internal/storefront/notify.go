// AngelaMos | 2026
// notify.go

package storefront

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is one toast style message for the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

type Navigator interface {
	Navigate(target string)
}

// Invalidator marks cached reads stale by key prefix.
type Invalidator interface {
	Invalidate(prefix string)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type NavigatorFunc func(string)

func (f NavigatorFunc) Navigate(target string) { f(target) }
