package ports

// Notifier posts a user-visible notification. Implementations must be safe
// to call from the refresh loop.
type Notifier interface {
	Notify(title, message string) error
}
