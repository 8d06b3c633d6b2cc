package out

import "context"

// NotificationSink принимает уведомление пользователю.
// Вызывается fire-and-forget: ошибка только логируется.
type NotificationSink interface {
	Notify(ctx context.Context, recipientID, message, category string) error
}
