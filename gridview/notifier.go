package gridview

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Notifier shows flash messages to the user.
type Notifier interface {
	Flash(level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level, message string)

func (f NotifierFunc) Flash(level, message string) { f(level, message) }

type nopNotifier struct{}

func (nopNotifier) Flash(string, string) {}

// Translation keys used by the Manager.
const (
	MsgViewCreated = "oro.datagrid.gridView.created"
	MsgViewUpdated = "oro.datagrid.gridView.updated"
	MsgViewDeleted = "oro.datagrid.gridView.deleted"
	MsgViewError   = "oro.datagrid.gridView.error"
	MsgSelectView  = "Please select view"
	LabelSave      = "oro.datagrid.action.save_grid_view"
	LabelSaveAs    = "oro.datagrid.action.save_grid_view_as"
	LabelShare     = "oro.datagrid.action.share_grid_view"
	LabelDelete    = "oro.datagrid.action.delete_grid_view"
)
