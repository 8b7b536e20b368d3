package dashboard

import (
	"github.com/goliatone/go-errors"
)

const (
	ErrCodeInvalidWidget      = "DASHBOARD_INVALID_WIDGET"
	ErrCodeInvalidTab         = "DASHBOARD_INVALID_TAB"
	ErrCodeInvalidContentType = "DASHBOARD_INVALID_CONTENT_TYPE"
	ErrCodeUnreadCount        = "DASHBOARD_UNREAD_COUNT_FAILED"
	ErrCodeWidgetConfig       = "DASHBOARD_WIDGET_CONFIG_FAILED"
	ErrCodeSchedule           = "DASHBOARD_SCHEDULE_FAILED"
	ErrCodeInvalidOptions     = "DASHBOARD_INVALID_OPTIONS"
)

var (
	ErrInvalidWidget = errors.New("invalid widget name", errors.CategoryBadInput).
				WithTextCode(ErrCodeInvalidWidget)
	ErrInvalidTab = errors.New("invalid recent emails tab", errors.CategoryBadInput).
			WithTextCode(ErrCodeInvalidTab)
	ErrInvalidContentType = errors.New("invalid content type", errors.CategoryBadInput).
				WithTextCode(ErrCodeInvalidContentType)
	ErrInvalidOptions = errors.New("invalid dashboard options", errors.CategoryValidation).
				WithTextCode(ErrCodeInvalidOptions)
)

func invalid(base *errors.Error, field, value string) *errors.Error {
	return base.Clone().WithMetadata(map[string]any{field: value})
}
