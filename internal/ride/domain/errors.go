package domain

import "errors"

var (
	// ErrInvalidCapacity — вместимость не помещает уже занятые места или не положительна
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrAlreadyMember — пользователь уже в группе (или он создатель запроса)
	ErrAlreadyMember = errors.New("already a member")

	// ErrNotAMember — пользователя нет в members (создатель сюда тоже попадает)
	ErrNotAMember = errors.New("not a member")

	// ErrGroupFull — свободных мест нет
	ErrGroupFull = errors.New("group is full")

	// ErrNotFound — запрос или группа не найдены
	ErrNotFound = errors.New("not found")

	// ErrConflict — CAS по version проигран max_attempts раз подряд
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrStoreUnavailable — хранилище вернуло ошибку
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrForbidden — действие разрешено только создателю или админу
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyCancelled — повторная отмена запроса
	ErrAlreadyCancelled = errors.New("ride request already cancelled")

	// ErrRequestCancelled — нельзя вступить в отмененную поездку
	ErrRequestCancelled = errors.New("ride request is cancelled")

	// ErrGenderRestricted — female_only поездка недоступна пользователю
	ErrGenderRestricted = errors.New("ride is restricted to female passengers")

	// ErrInvalidInput — невалидные входные данные
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError оборачивает ошибку хранилища так, что errors.Is срабатывает
// и на ErrStoreUnavailable, и на исходную ошибку драйвера.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storeError{op: op, err: err}
}

type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	return e.op + ": " + ErrStoreUnavailable.Error() + ": " + e.err.Error()
}

func (e *storeError) Unwrap() []error { return []error{ErrStoreUnavailable, e.err} }
