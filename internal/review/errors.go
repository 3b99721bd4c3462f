package review

import "errors"

// Sentinel errors for the review engine. Check with errors.Is.
var (
	// ErrInvalidLimit rejects negative queue limits before any I/O.
	ErrInvalidLimit = errors.New("review: invalid queue limit")
	// ErrInvalidIdentifier rejects empty or malformed user/item identifiers.
	ErrInvalidIdentifier = errors.New("review: invalid identifier")
	// ErrItemNotFound means no state exists for the (user, item) pair.
	ErrItemNotFound = errors.New("review: item state not found")
	// ErrConflict means a write lost a compare-and-swap race; the whole
	// submission may be retried once.
	ErrConflict = errors.New("review: concurrent update conflict")
	// ErrStoreUnavailable wraps infrastructure failures of the item store.
	ErrStoreUnavailable = errors.New("review: item store unavailable")
	// ErrLessonNotFound means the lesson has no items to start.
	ErrLessonNotFound = errors.New("review: lesson not found")
)
