package gridview

import (
	"github.com/goliatone/go-errors"
)

const (
	ErrCodeViewNotFound   = "GRID_VIEW_NOT_FOUND"
	ErrCodeNoActiveView   = "GRID_VIEW_NOT_SELECTED"
	ErrCodeNotPermitted   = "GRID_VIEW_NOT_PERMITTED"
	ErrCodeStoreFailure   = "GRID_VIEW_STORE_FAILED"
	ErrCodeInvalidOptions = "GRID_VIEW_INVALID_OPTIONS"
)

var (
	ErrViewNotFound = errors.New("grid view not found", errors.CategoryBadInput).
			WithTextCode(ErrCodeViewNotFound)
	ErrNoActiveView = errors.New("no grid view is selected", errors.CategoryBadInput).
			WithTextCode(ErrCodeNoActiveView)
	ErrNotPermitted = errors.New("grid view action is not permitted", errors.CategoryConflict).
			WithTextCode(ErrCodeNotPermitted)
	ErrInvalidOptions = errors.New("invalid grid view options", errors.CategoryValidation).
				WithTextCode(ErrCodeInvalidOptions)
)

func withMeta(base *errors.Error, message string, meta map[string]any) *errors.Error {
	err := base.Clone()
	if message != "" {
		err.Message = message
	}
	if len(meta) > 0 {
		err = err.WithMetadata(meta)
	}
	return err
}

func storeFailure(err error, op string) *errors.Error {
	return errors.Wrap(err, errors.CategoryExternal, "grid view store "+op+" failed").
		WithTextCode(ErrCodeStoreFailure)
}
