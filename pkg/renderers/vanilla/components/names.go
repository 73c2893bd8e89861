package components

import "github.com/goliatone/go-admingen/pkg/widgets"

// Component names match the widget names resolved by pkg/widgets.
const (
	NameInput         = widgets.WidgetInput
	NameNumeric       = widgets.WidgetNumeric
	NameToggle        = widgets.WidgetToggle
	NameDropdown      = widgets.WidgetDropdown
	NameCalendar      = widgets.WidgetCalendar
	NameTextarea      = widgets.WidgetTextarea
	NameRichText      = widgets.WidgetRichText
	NameFile          = widgets.WidgetFile
	NameRelationOne   = widgets.WidgetRelationOne
	NameRelationChips = widgets.WidgetRelationChips
)
