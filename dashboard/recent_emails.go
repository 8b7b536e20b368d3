// Package dashboard builds the parameters of the recent emails dashboard widget.
package dashboard

import (
	"context"
	"fmt"
	"regexp"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-flowchart"
)

// Tab selects the mailbox listed by the widget.
type Tab string

const (
	TabInbox Tab = "inbox"
	TabSent  Tab = "sent"
	TabNew   Tab = "new"
)

func (t Tab) valid() bool {
	switch t {
	case TabInbox, TabSent, TabNew:
		return true
	}
	return false
}

// ContentType selects between the whole widget and the active tab only.
type ContentType string

const (
	ContentFull ContentType = "full"
	ContentTab  ContentType = "tab"
)

var widgetName = regexp.MustCompile(`^[\w-]+$`)

// Request identifies the widget being rendered and the user it is rendered for.
type Request struct {
	Widget         string
	ActiveTab      Tab
	ContentType    ContentType
	UserID         int64
	OrganizationID int64
}

// UnreadCounter counts unread emails of a user within an organization.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID, organizationID int64) (int, error)
}

// UnreadCounterFunc adapts a function to UnreadCounter.
type UnreadCounterFunc func(ctx context.Context, userID, organizationID int64) (int, error)

func (f UnreadCounterFunc) UnreadCount(ctx context.Context, userID, organizationID int64) (int, error) {
	return f(ctx, userID, organizationID)
}

// WidgetConfigs provides the configured attributes of a dashboard widget.
type WidgetConfigs interface {
	WidgetAttributes(widget string) (map[string]any, error)
}

// Option configures RecentEmails.
type Option func(*RecentEmails)

func WithLogger(l flowchart.Logger) Option {
	return func(r *RecentEmails) { r.logger = l }
}

// RecentEmails builds the template parameters of the recent emails widget.
type RecentEmails struct {
	counter UnreadCounter
	configs WidgetConfigs
	logger  flowchart.Logger
}

func NewRecentEmails(counter UnreadCounter, configs WidgetConfigs, opts ...Option) *RecentEmails {
	r := &RecentEmails{counter: counter, configs: configs}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = flowchart.NewFmtLogger(nil)
	}
	return r
}

// GridName returns the datagrid listing the emails of tab.
func GridName(tab Tab) string {
	return fmt.Sprintf("dashboard-recent-emails-%s-grid", tab)
}

// Normalize applies the defaults and validates the request.
func (req Request) Normalize() (Request, error) {
	if req.ActiveTab == "" {
		req.ActiveTab = TabInbox
	}
	if req.ContentType == "" {
		req.ContentType = ContentFull
	}
	if !widgetName.MatchString(req.Widget) {
		return req, invalid(ErrInvalidWidget, "widget", req.Widget)
	}
	if !req.ActiveTab.valid() {
		return req, invalid(ErrInvalidTab, "tab", string(req.ActiveTab))
	}
	if req.ContentType != ContentFull && req.ContentType != ContentTab {
		return req, invalid(ErrInvalidContentType, "content_type", string(req.ContentType))
	}
	return req, nil
}

// TabContent returns the parameters of the active tab grid.
func TabContent(req Request) map[string]any {
	return map[string]any{
		"loggedUserId": req.UserID,
		"gridName":     GridName(req.ActiveTab),
	}
}

// Build returns the tab parameters for ContentTab requests. Full requests also get
// the active tab, the unread count and the widget attributes, the latter taking
// precedence on key collisions.
func (r *RecentEmails) Build(ctx context.Context, req Request) (map[string]any, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	tab := TabContent(req)
	if req.ContentType == ContentTab {
		return tab, nil
	}

	unread := 0
	if r.counter != nil {
		unread, err = r.counter.UnreadCount(ctx, req.UserID, req.OrganizationID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryExternal, "count unread emails").
				WithTextCode(ErrCodeUnreadCount).
				WithMetadata(map[string]any{"user_id": req.UserID})
		}
	}

	params := map[string]any{
		"loggedUserId":     req.UserID,
		"activeTab":        string(req.ActiveTab),
		"activeTabContent": tab,
		"unreadMailCount":  unread,
	}
	if r.configs != nil {
		attrs, err := r.configs.WidgetAttributes(req.Widget)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryExternal, "load widget attributes").
				WithTextCode(ErrCodeWidgetConfig).
				WithMetadata(map[string]any{"widget": req.Widget})
		}
		for k, v := range attrs {
			params[k] = v
		}
	}
	r.logger.Debug("recent emails widget %s built for user %d (tab %s)", req.Widget, req.UserID, req.ActiveTab)
	return params, nil
}
